//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

// Package kube runs commands inside the glusterfs pods of a
// kubernetes cluster.
package kube

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lpabon/godbc"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/remotecommand"
	kexec "k8s.io/client-go/util/exec"

	rex "github.com/gluster/redant/pkg/remoteexec"
	"github.com/gluster/redant/pkg/utils"
)

const (
	KubeGlusterFSPodLabelKey = "glusterfs-node"
	DefaultTimeoutMinutes    = 10
)

var (
	logger = utils.NewLogger("[kubeexec]", utils.LEVEL_INFO)

	// replaced in tests, the fake clientset cannot stream
	execOnPod = streamOnPod
)

type Config struct {
	Host      string `json:"host"`
	CertFile  string `json:"cert"`
	Insecure  bool   `json:"insecure"`
	Token     string `json:"token"`
	Namespace string `json:"namespace"`

	TokenFile     string `json:"token_file"`
	NamespaceFile string `json:"namespace_file"`

	// Find the pod running on the node instead of using the
	// glusterfs-node label
	GlusterDaemonSet bool `json:"gluster_daemonset"`

	// Use POD name instead of using label
	// to access POD
	UsePodNames bool `json:"use_pod_names"`

	TimeoutMinutes int `json:"timeout_minutes"`
}

type KubeExecutor struct {
	config      *Config
	restConfig  *rest.Config
	kube        kubernetes.Interface
	timeout     time.Duration
	throttlemap map[string]chan bool
	lock        sync.Mutex
	cmdlog      *rex.CommandLogger
}

func SetLogLevel(level utils.LogLevel) {
	logger.SetLevel(level)
}

func envBool(name string, value *bool) {
	// Correct values are = y YES yes Yes Y true 1
	// disable are n N no NO No false 0
	env := strings.ToLower(os.Getenv(name))
	if env == "" {
		return
	}
	if env[0] == 'y' || env[0] == 't' || env[0] == '1' {
		*value = true
	} else if env[0] == 'n' || env[0] == 'f' || env[0] == '0' {
		*value = false
	}
}

func setWithEnvVariables(config *Config) {
	// Check Host e.g. "https://myhost:8443"
	if env := os.Getenv("REDANT_KUBE_APIHOST"); env != "" {
		config.Host = env
	}
	if env := os.Getenv("REDANT_KUBE_CERTFILE"); env != "" {
		config.CertFile = env
	}
	if env := os.Getenv("REDANT_KUBE_NAMESPACE"); env != "" {
		config.Namespace = env
	}
	if env := os.Getenv("REDANT_KUBE_TOKENFILE"); env != "" {
		config.TokenFile = env
	}
	if env := os.Getenv("REDANT_KUBE_NAMESPACEFILE"); env != "" {
		config.NamespaceFile = env
	}
	envBool("REDANT_KUBE_INSECURE", &config.Insecure)
	envBool("REDANT_KUBE_GLUSTER_DAEMONSET", &config.GlusterDaemonSet)
	envBool("REDANT_KUBE_USE_POD_NAMES", &config.UsePodNames)
}

func readAllLinesFromFile(filename string) (string, error) {
	fileBytes, err := ioutil.ReadFile(filename)
	if err != nil {
		return "", logger.LogError("Error reading %v file: %v", filename, err.Error())
	}
	return strings.TrimSpace(string(fileBytes)), nil
}

func restConfig(config *Config) (*rest.Config, error) {
	if config.Host == "" {
		rc, err := rest.InClusterConfig()
		if err != nil {
			return nil, logger.LogError("Unable to get in-cluster configuration: %v", err)
		}
		return rc, nil
	}

	rc := &rest.Config{
		Host:        config.Host,
		BearerToken: config.Token,
		TLSClientConfig: rest.TLSClientConfig{
			CAFile:   config.CertFile,
			Insecure: config.Insecure,
		},
	}
	if config.TokenFile != "" {
		token, err := readAllLinesFromFile(config.TokenFile)
		if err != nil {
			return nil, err
		}
		rc.BearerToken = token
	}
	return rc, nil
}

// NewKubeExecutor connects to the cluster described by config. Values
// set in the REDANT_KUBE_* environment variables override the file.
func NewKubeExecutor(config *Config) (*KubeExecutor, error) {
	godbc.Require(config != nil)

	setWithEnvVariables(config)

	if config.NamespaceFile != "" {
		var err error
		config.Namespace, err = readAllLinesFromFile(config.NamespaceFile)
		if err != nil {
			return nil, err
		}
	}
	if config.Namespace == "" {
		return nil, fmt.Errorf("Namespace must be provided in configuration")
	}

	rc, err := restConfig(config)
	if err != nil {
		return nil, err
	}
	clientset, err := kubernetes.NewForConfig(rc)
	if err != nil {
		logger.Err(err)
		return nil, fmt.Errorf("Unable to create a client connection")
	}

	return newKubeExecutor(config, rc, clientset), nil
}

func newKubeExecutor(config *Config,
	rc *rest.Config,
	kube kubernetes.Interface) *KubeExecutor {

	k := &KubeExecutor{
		config:      config,
		restConfig:  rc,
		kube:        kube,
		throttlemap: make(map[string]chan bool),
		cmdlog:      rex.NewCommandLogger(logger),
	}
	if config.TimeoutMinutes <= 0 {
		k.timeout = DefaultTimeoutMinutes * time.Minute
	} else {
		k.timeout = time.Duration(config.TimeoutMinutes) * time.Minute
	}

	godbc.Ensure(k.config.Namespace != "")
	return k
}

func (k *KubeExecutor) accessConnection(host string) {
	var (
		c  chan bool
		ok bool
	)

	k.lock.Lock()
	if c, ok = k.throttlemap[host]; !ok {
		c = make(chan bool, 1)
		k.throttlemap[host] = c
	}
	k.lock.Unlock()

	c <- true
}

func (k *KubeExecutor) freeConnection(host string) {
	k.lock.Lock()
	c := k.throttlemap[host]
	k.lock.Unlock()

	<-c
}

// ExecuteCommand runs cmd in the glusterfs pod of node.
func (k *KubeExecutor) ExecuteCommand(node, cmd string) (*rex.Result, error) {
	k.accessConnection(node)
	defer k.freeConnection(node)

	podName, err := k.podName(node)
	if err != nil {
		return nil, err
	}

	k.cmdlog.Before(cmd, node)

	var b, berr bytes.Buffer
	cmdv := []string{"/bin/bash", "-c", strings.TrimSpace(cmd)}

	errch := make(chan error, 1)
	go func() {
		errch <- execOnPod(k, podName, cmdv, &b, &berr)
	}()

	select {
	case err := <-errch:
		status := 0
		if exitErr, ok := err.(kexec.ExitError); ok {
			status = exitErr.ExitStatus()
		} else if err != nil {
			k.cmdlog.Error(cmd, node, err)
			logger.Err(err)
			return nil, rex.ErrUnreachable.Wrapf("Unable to execute command on %v", podName)
		}
		r := rex.NewResult(node, cmd, status, b.String(), berr.String())
		k.cmdlog.Done(r)
		return r, nil
	case <-time.After(k.timeout):
		k.cmdlog.Timeout(cmd, node)
		return nil, rex.ErrTimeout.Wrapf("%v on pod %v", node, podName)
	}
}

func (k *KubeExecutor) podName(host string) (string, error) {
	if k.config.UsePodNames {
		return host, nil
	} else if k.config.GlusterDaemonSet {
		return k.getPodNameFromDaemonSet(host)
	}
	return k.getPodNameByLabel(host)
}

func (k *KubeExecutor) getPodNameByLabel(host string) (string, error) {
	// 'host' is the value of the glusterfs-node label
	pods, err := k.kube.CoreV1().Pods(k.config.Namespace).List(context.TODO(),
		metav1.ListOptions{
			LabelSelector: KubeGlusterFSPodLabelKey + "=" + host,
		})
	if err != nil {
		logger.Err(err)
		return "", fmt.Errorf("Failed to get list of pods")
	}

	numPods := len(pods.Items)
	if numPods == 0 {
		err := fmt.Errorf("No pods with the label '%v=%v' were found",
			KubeGlusterFSPodLabelKey, host)
		logger.Critical(err.Error())
		return "", err

	} else if numPods > 1 {
		err := fmt.Errorf("Found %v pods with the sharing the same label '%v=%v'",
			numPods, KubeGlusterFSPodLabelKey, host)
		logger.Critical(err.Error())
		return "", err
	}

	return pods.Items[0].ObjectMeta.Name, nil
}

func (k *KubeExecutor) getPodNameFromDaemonSet(host string) (string, error) {
	pods, err := k.kube.CoreV1().Pods(k.config.Namespace).List(context.TODO(),
		metav1.ListOptions{
			LabelSelector: KubeGlusterFSPodLabelKey,
		})
	if err != nil {
		logger.Err(err)
		return "", logger.LogError("Failed to get list of pods")
	}

	var glusterPod string
	for _, pod := range pods.Items {
		if pod.Spec.NodeName == host {
			glusterPod = pod.ObjectMeta.Name
		}
	}
	if glusterPod == "" {
		return "", logger.LogError("Unable to find a GlusterFS pod on host %v "+
			"with a label key %v", host, KubeGlusterFSPodLabelKey)
	}

	return glusterPod, nil
}

func streamOnPod(k *KubeExecutor, podName string,
	cmdv []string,
	stdout, stderr io.Writer) error {

	req := k.kube.CoreV1().RESTClient().Post().
		Resource("pods").
		Name(podName).
		Namespace(k.config.Namespace).
		SubResource("exec")
	req.VersionedParams(&corev1.PodExecOptions{
		Command: cmdv,
		Stdout:  true,
		Stderr:  true,
	}, scheme.ParameterCodec)

	// Create SPDY connection
	exec, err := remotecommand.NewSPDYExecutor(k.restConfig, "POST", req.URL())
	if err != nil {
		logger.Err(err)
		return fmt.Errorf("Unable to setup a session with %v", podName)
	}

	return exec.Stream(remotecommand.StreamOptions{
		Stdout: stdout,
		Stderr: stderr,
	})
}
