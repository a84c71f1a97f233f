package scenario

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/epinio/epinio-e2e/internal/browser/browsertest"
	"github.com/epinio/epinio-e2e/internal/manifest"
	"github.com/epinio/epinio-e2e/internal/steps"
)

type recorder struct {
	mu     sync.Mutex
	ran    []string
	steps  []StepEvent
	cases  []CaseEvent
	failOn string
}

func (r *recorder) step(name string) Step {
	return step(name, "", func(ctx context.Context, e *steps.Epinio) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.ran = append(r.ran, name)
		if name == r.failOn {
			return errors.New("boom")
		}
		return nil
	})
}

func (r *recorder) StepDone(ev StepEvent) { r.steps = append(r.steps, ev) }
func (r *recorder) CaseDone(ev CaseEvent) { r.cases = append(r.cases, ev) }

func newDispatcher(t *testing.T, r *recorder, opts ...DispatcherOption) (*Dispatcher, *browsertest.Fake) {
	t.Helper()
	cleanup := r.step("cleanup")
	reg := &Registry{suites: map[string]*Suite{}}
	reg.Add(&Suite{
		Name:    "demo",
		Cleanup: &cleanup,
		Cases: []Case{
			{Label: "three", Steps: []Step{r.step("one"), r.step("two"), r.step("three")}},
			{Label: "empty"},
		},
	})
	reg.Add(&Suite{Name: "bare", Cases: []Case{{Label: "one", Steps: []Step{r.step("only")}}}})

	f := browsertest.New("https://epinio.local")
	log := zaptest.NewLogger(t)
	e := steps.New(f, steps.Settings{DownloadsDir: t.TempDir()}, log)
	opts = append([]DispatcherOption{WithObserver(r), WithObserver(LogObserver{Log: log}), WithRunID("run-1")}, opts...)
	return NewDispatcher(reg, e, log, opts...), f
}

func TestRunExecutesStepsInOrderThenCleanup(t *testing.T) {
	r := &recorder{}
	d, _ := newDispatcher(t, r)

	require.NoError(t, d.Run(context.Background(), "demo", "three"))
	assert.Equal(t, []string{"one", "two", "three", "cleanup"}, r.ran)

	require.Len(t, r.steps, 4)
	assert.Equal(t, 3, r.steps[3].Index)
	assert.True(t, r.steps[3].Cleanup)
	assert.False(t, r.steps[0].Cleanup)
	assert.Equal(t, "run-1", r.steps[0].RunID)

	require.Len(t, r.cases, 1)
	assert.NoError(t, r.cases[0].Err)
}

func TestRunWithoutSteps(t *testing.T) {
	r := &recorder{}
	d, _ := newDispatcher(t, r)
	require.NoError(t, d.Run(context.Background(), "demo", "empty"))
	assert.Equal(t, []string{"cleanup"}, r.ran)
}

func TestRunWithoutCleanup(t *testing.T) {
	r := &recorder{}
	d, _ := newDispatcher(t, r)
	require.NoError(t, d.Run(context.Background(), "bare", "one"))
	assert.Equal(t, []string{"only"}, r.ran)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	r := &recorder{failOn: "two"}
	d, f := newDispatcher(t, r, WithArtifacts("artifacts"))

	err := d.Run(context.Background(), "demo", "three")
	require.Error(t, err)
	assert.Equal(t, []string{"one", "two"}, r.ran, "later steps and cleanup are skipped")

	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "demo", se.Suite)
	assert.Equal(t, "three", se.Case)
	assert.Equal(t, 1, se.Index)
	assert.Equal(t, "two", se.Step)
	assert.Contains(t, err.Error(), "demo/three: step 2 (two)")

	assert.Equal(t, []string{filepath.Join("artifacts", "run-1", "demo_three.png")}, f.Screenshots())
	require.Len(t, r.cases, 1)
	assert.Error(t, r.cases[0].Err)
}

func TestRunReportsCleanupFailure(t *testing.T) {
	r := &recorder{failOn: "cleanup"}
	d, _ := newDispatcher(t, r)

	err := d.Run(context.Background(), "demo", "three")
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 3, se.Index)
	assert.Equal(t, "cleanup", se.Step)
}

func TestRunUnknownCase(t *testing.T) {
	tests := []struct{ suite, label string }{
		{"demo", "missing"},
		{"missing", "three"},
	}
	for _, tt := range tests {
		t.Run(tt.suite+"/"+tt.label, func(t *testing.T) {
			r := &recorder{}
			d, f := newDispatcher(t, r)
			err := d.Run(context.Background(), tt.suite, tt.label)
			assert.ErrorIs(t, err, ErrUnknownCase)
			assert.Empty(t, r.ran)
			assert.Empty(t, r.cases)
			assert.Empty(t, f.Calls())
		})
	}
}

func TestRunCancelled(t *testing.T) {
	r := &recorder{}
	d, _ := newDispatcher(t, r)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Run(ctx, "demo", "three")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.ran)
}

func TestRegistryLabels(t *testing.T) {
	reg := NewRegistry(Params{SystemDomain: "192.168.1.10.sslip.io"})

	assert.Equal(t, []string{Applications, Configurations, Connection, Namespaces}, reg.Suites())

	want := map[string][]string{
		Applications: {
			"multipleInstanceAndContainer", "customRoute", "envVarsAndGitUrl", "restartAndRebuild",
			"allTests", "downloadManifestAndPushApp", "serviceMysqlBindWordpressPushApp",
			"serviceBindUnbindFromServicePage", "gitHubAndEnvVar", "pushGitlabAndUpdateSources",
			"downloadChartsAndImages", "serviceBindSingleStep",
		},
		Configurations: {"newAppWithConfiguration", "bindConfigurationOnApp", "createConfigfromFile"},
		Namespaces:     {"newNamespace", "namespaceFilter", "newNamespaceFromResource"},
		Connection:     {"firstConnection"},
	}
	for suite, labels := range want {
		got, err := reg.Labels(suite)
		require.NoError(t, err)
		assert.Equal(t, labels, got, suite)
	}

	_, err := reg.Labels("menu")
	assert.ErrorIs(t, err, ErrUnknownCase)
}

func stepNames(c *Case) []string {
	names := make([]string, 0, len(c.Steps))
	for _, s := range c.Steps {
		names = append(names, s.Name)
	}
	return names
}

func TestBuiltinCases(t *testing.T) {
	reg := NewRegistry(Params{SystemDomain: "192.168.1.10.sslip.io"})

	s, c, err := reg.Case(Applications, "downloadManifestAndPushApp")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CreateConfiguration", "CreateApp", "CheckApp", "DownloadManifestChartsAndImages",
		"DeleteApp", "CreateApp", "CheckApp",
	}, stepNames(c))
	assert.Equal(t, "DeleteAppIfExists(testapp)", s.Cleanup.String())
	assert.Equal(t, "custom-route-testapp.192.168.1.10.sslip.io", s.Constants["customRoute"])

	_, c, err = reg.Case(Applications, "serviceBindSingleStep")
	require.NoError(t, err)
	assert.Len(t, c.Steps, 12)
	assert.Equal(t, "ClickMenuGroup", c.Steps[7].Name)

	s, _, err = reg.Case(Configurations, "createConfigfromFile")
	require.NoError(t, err)
	assert.Equal(t, "DeleteConfiguration", s.Cleanup.Name)

	s, c, err = reg.Case(Namespaces, "namespaceFilter")
	require.NoError(t, err)
	assert.Nil(t, s.Cleanup)
	assert.Len(t, c.Steps, 18)

	s, _, err = reg.Case(Connection, "firstConnection")
	require.NoError(t, err)
	assert.Nil(t, s.Cleanup)
}

func stepCalls(c *Case) []string {
	calls := make([]string, 0, len(c.Steps))
	for _, s := range c.Steps {
		calls = append(calls, s.String())
	}
	return calls
}

func TestBuiltinStepSequences(t *testing.T) {
	reg := NewRegistry(Params{SystemDomain: "192.168.1.10.sslip.io"})

	tests := []struct {
		suite, label string
		want         []string
	}{
		{Applications, "multipleInstanceAndContainer", []string{
			"CreateApp(testapp Container Image)", "CheckApp(testapp)", "CheckDashboardResources()",
		}},
		{Applications, "customRoute", []string{
			"CreateApp(testapp Archive)", "CheckApp(testapp)", "ShowAppLog(testapp)", "ShowAppShell(testapp)",
		}},
		{Applications, "envVarsAndGitUrl", []string{
			"CreateApp(testapp Git URL)", "CheckApp(testapp)",
		}},
		{Applications, "restartAndRebuild", []string{
			"CreateApp(testapp Archive)", "CheckApp(testapp)", "RestartApp(testapp)", "CheckApp(testapp)",
			"RebuildApp(testapp)", "CheckApp(testapp)",
		}},
		{Applications, "allTests", []string{
			"CreateApp(testapp Git URL)", "CheckApp(testapp)",
		}},
		{Applications, "downloadManifestAndPushApp", []string{
			"CreateConfiguration(configuration01)", "CreateApp(testapp Archive)", "CheckApp(testapp)",
			"DownloadManifestChartsAndImages(testapp Manifest)", "DeleteApp(testapp)",
			"CreateApp(manifest.yaml Archive)", "CheckApp(testapp)",
		}},
		{Applications, "serviceMysqlBindWordpressPushApp", []string{
			"DeleteAll(Services)", "CreateService(mycustom-service mysql-dev)", "CreateApp(testapp Git URL)",
			"CheckApp(testapp)", "BindServiceFromServicesPage(unbind mycustom-service testapp)",
			"DeleteService(mycustom-service)",
		}},
		{Applications, "serviceBindUnbindFromServicePage", []string{
			"DeleteAll(Services)", "CreateService(mycustom-service-2 postgresql-dev)", "CheckDashboardResources()",
			"CreateApp(testapp Container Image)",
			"BindServiceFromServicesPage(bind mycustom-service-2 testapp)",
			"BindServiceFromServicesPage(unbind mycustom-service-2 testapp)",
			"DeleteService(mycustom-service-2)",
		}},
		{Applications, "gitHubAndEnvVar", []string{
			"CreateApp(githubapp GitHub)", "CheckApp(testapp)",
		}},
		{Applications, "pushGitlabAndUpdateSources", []string{
			"CreateApp(testapp GitLab)", "CheckApp(testapp)", "RedeployFromCommit(bb688311)", "CheckApp(testapp)",
			"UpdateAppSource(testapp Archive)", "CheckApp(testapp)",
		}},
		{Applications, "downloadChartsAndImages", []string{
			"CreateApp(testapp Git URL)", "CheckApp(testapp)",
			"DownloadManifestChartsAndImages(testapp Chart and Images)", "FindExtractCheck(testapp Chart and Images)",
		}},
		{Applications, "serviceBindSingleStep", []string{
			"DeleteAll(Services)", "CreateApp(testapp Archive)",
			"CreateServiceAndBindOneStep(svc-redis-dev redis-dev testapp)",
			"CreateServiceAndBindOneStep(svc-mysql-dev mysql-dev testapp)",
			"CreateServiceAndBindOneStep(svc-postgresql postgresql-dev testapp)",
			"CountAndVerifyElements(3 Deployed testapp)", "DeleteService(svc-postgresql)", "ClickMenuGroup(Services)",
			"CreateServiceAndBindOneStep(svc-rabbitmq-dev rabbitmq-dev testapp)",
			"CreateServiceAndBindOneStep(svc-mongodb mongodb-dev testapp)",
			"CountAndVerifyElements(4 Deployed testapp)", "DeleteAll(Services)",
		}},
		{Configurations, "newAppWithConfiguration", []string{
			"CreateConfiguration(configuration01)", "CreateApp(testapp Archive)", "CheckApp(testapp)",
			"UnbindConfiguration(testapp configuration01)", "CheckApp(testapp)", "DeleteApp(testapp)",
		}},
		{Configurations, "bindConfigurationOnApp", []string{
			"CreateConfiguration(configuration01)", "CreateApp(testapp Archive)", "CheckApp(testapp)",
			"BindConfiguration(testapp configuration01)", "CheckApp(testapp)", "EditConfiguration(configuration01)",
			"DeleteApp(testapp)",
		}},
		{Configurations, "createConfigfromFile", []string{
			"CreateConfiguration(configuration01)",
		}},
		{Namespaces, "newNamespace", []string{
			"CreateNamespace(mynamespace)", "CreateApp(testapp Archive)", "CheckApp(testapp)",
			"DeleteNamespace(mynamespace)",
		}},
		{Namespaces, "namespaceFilter", []string{
			"CreateNamespace(ns-1)", "CreateNamespace(ns-2)", "CreateConfiguration(config-1)",
			"CreateConfiguration(config-2)", "CreateApp(testapp-1 Container Image)",
			"CreateApp(testapp-2 Container Image)", "CheckDashboardResources()", "OpenNamespacesFilter(Applications)",
			"FilterNamespacesAndCheck(ns-1 testapp-1)", "FilterNamespacesAndCheck(ns-2 testapp-2)",
			"CheckOutcomeFilteredNamespaces(2 2)", "FilterNamespacesAndCheck(-ns-2 testapp-2)",
			"CheckOutcomeFilteredNamespaces(1 1 testapp-1)", "ClickEpinioMenu(Configurations)",
			"CheckOutcomeFilteredNamespaces(1 1 config-1)", "FilterNamespacesAndCheck(-ns-1)",
			"CheckOutcomeFilteredNamespaces(0 2 config-1)", "CheckOutcomeFilteredNamespaces(0 2 config-2)",
		}},
		{Namespaces, "newNamespaceFromResource", []string{
			"ClickEpinioMenu(Configurations)", "ClickButton(Create)", "CreateNamespaceFromResource(ns-from-configuration)",
			"ExpandMenuGroup(0)", "ClickText(Instances)", "ClickButton(Create)",
			"CreateNamespaceFromResource(ns-from-instance)", "ClickEpinioMenu(Applications)", "ClickButton(Create)",
			"CreateNamespaceFromResource(ns-from-application)",
		}},
		{Connection, "firstConnection", []string{
			"RunFirstConnectionTest()",
		}},
	}

	covered := 0
	for _, suite := range reg.Suites() {
		labels, err := reg.Labels(suite)
		require.NoError(t, err)
		covered += len(labels)
	}
	require.Len(t, tests, covered, "every built-in case has a row")

	for _, tt := range tests {
		t.Run(tt.suite+"/"+tt.label, func(t *testing.T) {
			_, c, err := reg.Case(tt.suite, tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stepCalls(c))
		})
	}
}

func TestDownloadManifestChecksDeployedApp(t *testing.T) {
	f := browsertest.New("https://epinio.local")
	log := zaptest.NewLogger(t)
	e := steps.New(f, steps.Settings{DownloadsDir: t.TempDir()}, log)
	f.OnDownload(func(dir string) (string, error) {
		p := filepath.Join(dir, "testapp-manifest.yaml")
		return p, os.WriteFile(p, []byte("name: testapp\nconfiguration:\n  instances: 1\n"), 0o644)
	})

	_, c, err := NewRegistry(Params{SystemDomain: "192.168.1.10.sslip.io"}).Case(Applications, "downloadManifestAndPushApp")
	require.NoError(t, err)
	export := c.Steps[3]
	require.Equal(t, "DownloadManifestChartsAndImages", export.Name)

	err = export.Do(context.Background(), e)
	assert.ErrorIs(t, err, manifest.ErrMismatch)
	for _, want := range []string{"custom-route-testapp.192.168.1.10.sslip.io", "instances is 1, want 2", "configuration01", "TEST_VAR"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestCustomRouteWithoutDomain(t *testing.T) {
	s, err := NewRegistry(Params{}).Suite(Applications)
	require.NoError(t, err)
	assert.Equal(t, "custom-route-testapp", s.Constants["customRoute"])
}

func TestFirstConnectionAgainstInitialisedRancher(t *testing.T) {
	f := browsertest.New("https://rancher.local").SetText("body", "Welcome to Rancher")
	log := zaptest.NewLogger(t)
	e := steps.New(f, steps.Settings{UI: steps.UIRancher, DownloadsDir: t.TempDir()}, log)
	d := NewDispatcher(NewRegistry(Params{}), e, log)

	require.NoError(t, d.Run(context.Background(), Connection, "firstConnection"))
	assert.Equal(t, "Visit /auth/login", f.Ops()[0])
	assert.NotEmpty(t, d.RunID())
}
