package cluster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/epinio/epinio-e2e/internal/steps"
)

var _ steps.ClusterView = (*Namespaces)(nil)

func namespace(name string, created time.Time, epinio bool) *corev1.Namespace {
	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{
		Name:              name,
		CreationTimestamp: metav1.NewTime(created),
	}}
	if epinio {
		ns.Labels = map[string]string{"app.kubernetes.io/component": "epinio-namespace"}
	}
	return ns
}

func TestListNewestFirst(t *testing.T) {
	now := time.Now()
	clientset := fake.NewSimpleClientset(
		namespace("workspace", now.Add(-time.Hour), true),
		namespace("ns-2", now, true),
		namespace("ns-1", now.Add(-time.Minute), true),
		namespace("kube-system", now, false),
	)
	n := New(clientset)

	names, err := n.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ns-2", "ns-1", "workspace"}, names)

	count, err := n.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestWaitCount(t *testing.T) {
	ctx := context.Background()
	clientset := fake.NewSimpleClientset(namespace("workspace", time.Now(), true))
	n := New(clientset)
	n.interval = 10 * time.Millisecond

	require.NoError(t, n.WaitCount(ctx, 1, time.Second))

	err := n.WaitCount(ctx, 0, 50*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster has 1 epinio namespaces, want 0")

	require.NoError(t, clientset.CoreV1().Namespaces().Delete(ctx, "workspace", metav1.DeleteOptions{}))
	require.NoError(t, n.WaitCount(ctx, 0, time.Second))
}

func TestFromKubeconfigMissingFile(t *testing.T) {
	_, err := FromKubeconfig("/nonexistent/kubeconfig")
	assert.Error(t, err)
}
