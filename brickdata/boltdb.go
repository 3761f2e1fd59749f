//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

package brickdata

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/boltdb/bolt"
	"github.com/lpabon/godbc"
	"github.com/pkg/errors"
)

const (
	BOLTDB_BUCKET_BRICKDATA = "BRICKDATA"
	BOLTDB_BUCKET_CLEANDS   = "CLEANDS"
)

// BoltStore persists the bookkeeping so that brick directories left
// behind by an aborted run can still be cleaned by the next one.
type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(dbpath string) (*BoltStore, error) {
	godbc.Require(dbpath != "")

	db, err := bolt.Open(dbpath, 0600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, logger.LogError("Unable to open database %v: %v", dbpath, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{BOLTDB_BUCKET_BRICKDATA, BOLTDB_BUCKET_CLEANDS} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return errors.Wrapf(err, "Unable to create bucket %v", bucket)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, logger.Err(err)
	}

	b := &BoltStore{db: db}
	godbc.Ensure(b.db != nil)
	return b, nil
}

func (b *BoltStore) Close() {
	b.db.Close()
}

func (b *BoltStore) AddBricks(volname string, bricks ServerBricks) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		vol, err := readServerBricks(tx.Bucket([]byte(BOLTDB_BUCKET_BRICKDATA)), volname)
		if err != nil {
			return err
		}
		vol.Merge(bricks)
		err = writeServerBricks(tx.Bucket([]byte(BOLTDB_BUCKET_BRICKDATA)), volname, vol)
		if err != nil {
			return err
		}

		cleands := tx.Bucket([]byte(BOLTDB_BUCKET_CLEANDS))
		for server, paths := range bricks {
			dirs, err := readList(cleands, server)
			if err != nil {
				return err
			}
			for _, path := range paths {
				if !contains(dirs, path) {
					dirs = append(dirs, path)
				}
			}
			if err := writeList(cleands, server, dirs); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *BoltStore) RemoveBricks(volname string, bricks ServerBricks) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BOLTDB_BUCKET_BRICKDATA))
		vol, err := readServerBricks(bucket, volname)
		if err != nil {
			return err
		}
		if len(vol) == 0 {
			logger.Warning("Volume %v has no bricks recorded", volname)
			return nil
		}
		vol.Subtract(bricks)
		return writeServerBricks(bucket, volname, vol)
	})
}

func (b *BoltStore) Bricks(volname string) (vol ServerBricks, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		vol, err = readServerBricks(tx.Bucket([]byte(BOLTDB_BUCKET_BRICKDATA)), volname)
		return err
	})
	return
}

func (b *BoltStore) Volumes() ([]string, error) {
	names := []string{}
	err := b.db.View(func(tx *bolt.Tx) error {
		// bolt iterates keys in byte order
		return tx.Bucket([]byte(BOLTDB_BUCKET_BRICKDATA)).ForEach(func(k, v []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

func (b *BoltStore) DeleteVolume(volname string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BOLTDB_BUCKET_BRICKDATA)).Delete([]byte(volname))
	})
}

func (b *BoltStore) CleanDirs() (ServerBricks, error) {
	dirs := ServerBricks{}
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BOLTDB_BUCKET_CLEANDS)).ForEach(func(k, v []byte) error {
			var list []string
			if err := decode(v, &list); err != nil {
				return err
			}
			dirs[string(k)] = list
			return nil
		})
	})
	return dirs, err
}

func (b *BoltStore) RemoveCleanDir(node, dir string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BOLTDB_BUCKET_CLEANDS))
		dirs, err := readList(bucket, node)
		if err != nil {
			return err
		}
		kept := []string{}
		for _, d := range dirs {
			if d != dir {
				kept = append(kept, d)
			}
		}
		return writeList(bucket, node, kept)
	})
}

func readServerBricks(bucket *bolt.Bucket, key string) (ServerBricks, error) {
	vol := ServerBricks{}
	val := bucket.Get([]byte(key))
	if val == nil {
		return vol, nil
	}
	if err := decode(val, &vol); err != nil {
		return nil, errors.Wrapf(err, "Unable to decode bricks of volume %v", key)
	}
	return vol, nil
}

func writeServerBricks(bucket *bolt.Bucket, key string, vol ServerBricks) error {
	if len(vol) == 0 {
		return bucket.Delete([]byte(key))
	}
	buffer, err := encode(vol)
	if err != nil {
		return errors.Wrapf(err, "Unable to encode bricks of volume %v", key)
	}
	return bucket.Put([]byte(key), buffer)
}

func readList(bucket *bolt.Bucket, key string) ([]string, error) {
	var list []string
	val := bucket.Get([]byte(key))
	if val == nil {
		return list, nil
	}
	if err := decode(val, &list); err != nil {
		return nil, errors.Wrapf(err, "Unable to decode entry %v", key)
	}
	return list, nil
}

func writeList(bucket *bolt.Bucket, key string, list []string) error {
	if len(list) == 0 {
		return bucket.Delete([]byte(key))
	}
	buffer, err := encode(list)
	if err != nil {
		return errors.Wrapf(err, "Unable to encode entry %v", key)
	}
	return bucket.Put([]byte(key), buffer)
}

func encode(v interface{}) ([]byte, error) {
	var buffer bytes.Buffer
	enc := gob.NewEncoder(&buffer)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func decode(buffer []byte, v interface{}) error {
	dec := gob.NewDecoder(bytes.NewReader(buffer))
	return dec.Decode(v)
}
