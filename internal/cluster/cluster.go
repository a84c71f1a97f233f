// Package cluster reads Epinio state straight from Kubernetes so console
// figures can be cross-checked.
package cluster

import (
	"context"
	"fmt"
	"sort"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// NamespaceSelector matches the namespaces Epinio manages.
const NamespaceSelector = "app.kubernetes.io/component=epinio-namespace"

const pollInterval = 2 * time.Second

// Namespaces lists Epinio namespaces through a clientset.
type Namespaces struct {
	clientset kubernetes.Interface
	interval  time.Duration
}

func New(clientset kubernetes.Interface) *Namespaces {
	return &Namespaces{clientset: clientset, interval: pollInterval}
}

// FromKubeconfig builds a client from path. An empty path tries the
// in-cluster config first and then the default loading rules.
func FromKubeconfig(path string) (*Namespaces, error) {
	config, err := restConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}
	return New(clientset), nil
}

func restConfig(path string) (*rest.Config, error) {
	if path != "" {
		return clientcmd.BuildConfigFromFlags("", path)
	}
	if config, err := rest.InClusterConfig(); err == nil {
		return config, nil
	}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		clientcmd.NewDefaultClientConfigLoadingRules(),
		&clientcmd.ConfigOverrides{},
	).ClientConfig()
}

// List returns the Epinio namespace names, newest first.
func (n *Namespaces) List(ctx context.Context) ([]string, error) {
	list, err := n.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{LabelSelector: NamespaceSelector})
	if err != nil {
		return nil, fmt.Errorf("failed to list namespaces: %w", err)
	}
	items := list.Items
	sort.SliceStable(items, func(i, j int) bool {
		return items[j].CreationTimestamp.Before(&items[i].CreationTimestamp)
	})
	names := make([]string, 0, len(items))
	for _, ns := range items {
		if ns.DeletionTimestamp != nil {
			continue
		}
		names = append(names, ns.Name)
	}
	return names, nil
}

func (n *Namespaces) Count(ctx context.Context) (int, error) {
	names, err := n.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// WaitCount polls until the cluster holds exactly want Epinio namespaces.
func (n *Namespaces) WaitCount(ctx context.Context, want int, timeout time.Duration) error {
	var last int
	err := wait.PollUntilContextTimeout(ctx, n.interval, timeout, true, func(ctx context.Context) (bool, error) {
		got, err := n.Count(ctx)
		if err != nil {
			return false, err
		}
		last = got
		return got == want, nil
	})
	if err != nil {
		return fmt.Errorf("cluster has %d epinio namespaces, want %d: %w", last, want, err)
	}
	return nil
}
