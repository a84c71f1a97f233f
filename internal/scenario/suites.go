package scenario

import (
	"github.com/epinio/epinio-e2e/internal/manifest"
	"github.com/epinio/epinio-e2e/internal/steps"
)

const (
	appName       = "testapp"
	archive       = "sample-app.tar.gz"
	httpdImage    = "httpd:latest"
	configuration = "configuration01"
)

func applicationsSuite(p Params) *Suite {
	const (
		paketo        = "paketobuildpacks/builder:tiny"
		appChart      = " standard (Epinio standard deployment)"
		gitURL        = "https://github.com/epinio/example-go"
		wordpressURL  = "https://github.com/epinio/example-wordpress"
		manifestName  = "manifest.yaml"
		customService = "mycustom-service"
		customCatalog = "mysql-dev"
		rowsLocator   = "tbody > tr.main-row"
	)
	customRoute := "custom-route-" + appName
	if p.SystemDomain != "" {
		customRoute += "." + p.SystemDomain
	}
	cleanup := deleteAppIfExists(appName)

	oneStep := func(name, catalog string) Step {
		return createServiceAndBind(steps.ServiceSpec{Name: name, CatalogType: catalog, AppName: appName})
	}

	return &Suite{
		Name: Applications,
		Constants: map[string]string{
			"appName":       appName,
			"archive":       archive,
			"customRoute":   customRoute,
			"paketo":        paketo,
			"appChart":      appChart,
			"gitUrl":        gitURL,
			"gitUrlWp":      wordpressURL,
			"configuration": configuration,
			"manifest":      manifestName,
			"customService": customService,
			"customCatalog": customCatalog,
		},
		Cleanup: &cleanup,
		Cases: []Case{
			{Label: "multipleInstanceAndContainer", Steps: []Step{
				createApp(steps.AppSpec{Name: appName, Archive: httpdImage, Instances: 5, SourceType: steps.SourceContainer}),
				checkApp(steps.AppCheck{Name: appName, DontCheckRouteAccess: true}),
				dashboard(steps.DashboardExpectation{NamespaceNumber: "1", AppNumber: "1", RunningApps: "1"}),
			}},
			{Label: "customRoute", Steps: []Step{
				createApp(steps.AppSpec{Name: appName, Archive: archive, Route: customRoute, SourceType: steps.SourceArchive}),
				checkApp(steps.AppCheck{Name: appName, Route: customRoute}),
				showAppLog(appName),
				showAppShell(appName),
			}},
			{Label: "envVarsAndGitUrl", Steps: []Step{
				createApp(steps.AppSpec{Name: appName, Archive: gitURL, CustomPaketoImage: paketo, AddVar: steps.VarsUI, SourceType: steps.SourceGitURL}),
				checkApp(steps.AppCheck{Name: appName, CheckVar: true}),
			}},
			{Label: "restartAndRebuild", Steps: []Step{
				createApp(steps.AppSpec{Name: appName, Archive: archive, SourceType: steps.SourceArchive}),
				checkApp(steps.AppCheck{Name: appName}),
				restartApp(appName),
				checkApp(steps.AppCheck{Name: appName}),
				rebuildApp(appName),
				checkApp(steps.AppCheck{Name: appName}),
			}},
			{Label: "allTests", Steps: []Step{
				createApp(steps.AppSpec{
					Name: appName, Archive: gitURL, CustomPaketoImage: paketo, CustomApplicationChart: appChart,
					Instances: 5, AddVar: steps.VarsUI, Route: customRoute, SourceType: steps.SourceGitURL,
				}),
				checkApp(steps.AppCheck{Name: appName, CheckVar: true, Route: customRoute}),
			}},
			{Label: "downloadManifestAndPushApp", Steps: []Step{
				createConfiguration(steps.ConfigurationSpec{Name: configuration}),
				createApp(steps.AppSpec{
					Name: appName, Archive: archive, SourceType: steps.SourceArchive, Route: customRoute,
					Instances: 2, AddVar: steps.VarsUI, ConfigurationName: configuration,
				}),
				checkApp(steps.AppCheck{Name: appName, CheckConfiguration: true, Route: customRoute, Instances: 2}),
				download(appName, steps.ExportManifest, manifest.Expectation{
					Route: customRoute, Instances: 2, Configuration: configuration, Vars: []string{steps.EnvVarName},
				}),
				deleteApp(appName),
				createApp(steps.AppSpec{Archive: archive, SourceType: steps.SourceArchive, ManifestName: manifestName}),
				checkApp(steps.AppCheck{Name: appName, CheckConfiguration: true, Route: customRoute, CheckVar: true, Instances: 2}),
			}},
			{Label: "serviceMysqlBindWordpressPushApp", Steps: []Step{
				deleteAll(steps.ResourceServices),
				createService(steps.ServiceSpec{Name: customService, CatalogType: customCatalog}),
				createApp(steps.AppSpec{
					Name: appName, Archive: wordpressURL, SourceType: steps.SourceGitURL, AddVar: steps.VarsWordpress,
					ServiceName: customService, CatalogType: customCatalog,
				}),
				checkApp(steps.AppCheck{Name: appName, DontCheckRouteAccess: true, ServiceName: customService, CheckCreatedApp: "wordpress"}),
				bindFromServicesPage(steps.ServiceSpec{Name: customService, AppName: appName, BindingOption: steps.Unbind}),
				deleteService(customService),
			}},
			{Label: "serviceBindUnbindFromServicePage", Steps: []Step{
				deleteAll(steps.ResourceServices),
				createService(steps.ServiceSpec{Name: "mycustom-service-2", CatalogType: "postgresql-dev"}),
				dashboard(steps.DashboardExpectation{ServicesNumber: "1"}),
				createApp(steps.AppSpec{Name: appName, Archive: httpdImage, Instances: 1, SourceType: steps.SourceContainer}),
				bindFromServicesPage(steps.ServiceSpec{Name: "mycustom-service-2", AppName: appName, BindingOption: steps.Bind}),
				bindFromServicesPage(steps.ServiceSpec{Name: "mycustom-service-2", AppName: appName, BindingOption: steps.Unbind}),
				deleteService("mycustom-service-2"),
			}},
			{Label: "gitHubAndEnvVar", Steps: []Step{
				createApp(steps.AppSpec{
					Name: "githubapp", AddVar: steps.VarsGoExample, SourceType: steps.SourceGitHub,
					GitUsername: "epinio", GitRepo: "example-go", GitBranch: "main", GitCommit: "e84b2a7",
				}),
				checkApp(steps.AppCheck{Name: appName, CheckVar: true}),
			}},
			{Label: "pushGitlabAndUpdateSources", Steps: []Step{
				createApp(steps.AppSpec{
					Name: appName, SourceType: steps.SourceGitLab,
					GitUsername: "richard-cox", GitRepo: "epinio-sample-app", GitBranch: "main", GitCommit: "07d2dd79",
				}),
				checkApp(steps.AppCheck{Name: appName, CheckCommit: "07d2dd7"}),
				redeployFromCommit("bb688311"),
				checkApp(steps.AppCheck{Name: appName, CheckCommit: "bb68831", CheckIcon: "gitlab"}),
				updateAppSource(steps.AppSpec{Name: appName, Archive: archive, SourceType: steps.SourceArchive}),
				checkApp(steps.AppCheck{Name: appName, CheckIcon: "file"}),
			}},
			{Label: "downloadChartsAndImages", Steps: []Step{
				createApp(steps.AppSpec{Name: appName, Archive: gitURL, CustomPaketoImage: paketo, AddVar: steps.VarsGoExample, SourceType: steps.SourceGitURL}),
				checkApp(steps.AppCheck{Name: appName, CheckVar: true, CheckIcon: "file"}),
				download(appName, steps.ExportChartAndImages, manifest.Expectation{}),
				findExtractCheck(appName, steps.ExportChartAndImages),
			}},
			{Label: "serviceBindSingleStep", Steps: []Step{
				deleteAll(steps.ResourceServices),
				createApp(steps.AppSpec{Name: appName, Archive: archive, SourceType: steps.SourceArchive}),
				oneStep("svc-redis-dev", "redis-dev"),
				oneStep("svc-mysql-dev", "mysql-dev"),
				oneStep("svc-postgresql", "postgresql-dev"),
				countAndVerify(rowsLocator, 3, "Deployed", appName),
				deleteService("svc-postgresql"),
				clickMenuGroup("Services"),
				oneStep("svc-rabbitmq-dev", "rabbitmq-dev"),
				oneStep("svc-mongodb", "mongodb-dev"),
				countAndVerify(rowsLocator, 4, "Deployed", appName),
				deleteAll(steps.ResourceServices),
			}},
		},
	}
}

func configurationsSuite() *Suite {
	cleanup := deleteConfiguration(configuration)
	return &Suite{
		Name: Configurations,
		Constants: map[string]string{
			"appName":       appName,
			"archive":       archive,
			"configuration": configuration,
		},
		Cleanup: &cleanup,
		Cases: []Case{
			{Label: "newAppWithConfiguration", Steps: []Step{
				createConfiguration(steps.ConfigurationSpec{Name: configuration}),
				createApp(steps.AppSpec{Name: appName, Archive: archive, ConfigurationName: configuration, SourceType: steps.SourceArchive}),
				checkApp(steps.AppCheck{Name: appName, CheckConfiguration: true}),
				unbindConfiguration(appName, configuration),
				checkApp(steps.AppCheck{Name: appName}),
				deleteApp(appName),
			}},
			{Label: "bindConfigurationOnApp", Steps: []Step{
				createConfiguration(steps.ConfigurationSpec{Name: configuration, FromFile: true}),
				createApp(steps.AppSpec{Name: appName, Archive: archive, AddVar: steps.VarsFile, SourceType: steps.SourceArchive}),
				checkApp(steps.AppCheck{Name: appName}),
				bindConfiguration(appName, configuration),
				checkApp(steps.AppCheck{Name: appName, CheckConfiguration: true, CheckVar: true}),
				editConfiguration(configuration),
				deleteApp(appName),
			}},
			{Label: "createConfigfromFile", Steps: []Step{
				createConfiguration(steps.ConfigurationSpec{Name: configuration, FromFileUpload: true}),
			}},
		},
	}
}

func namespacesSuite() *Suite {
	const (
		namespace           = "mynamespace"
		nsFromConfiguration = "ns-from-configuration"
		nsFromInstance      = "ns-from-instance"
		nsFromApplication   = "ns-from-application"
	)
	return &Suite{
		Name: Namespaces,
		Constants: map[string]string{
			"appName":             appName,
			"archive":             archive,
			"defaultNamespace":    steps.DefaultNamespace,
			"namespace":           namespace,
			"nsFromConfiguration": nsFromConfiguration,
			"nsFromInstance":      nsFromInstance,
			"nsFromApplication":   nsFromApplication,
		},
		Cases: []Case{
			{Label: "newNamespace", Steps: []Step{
				createNamespace(namespace),
				createApp(steps.AppSpec{Name: appName, Archive: archive, SourceType: steps.SourceArchive}),
				checkApp(steps.AppCheck{Name: appName, Namespace: namespace}),
				deleteNamespace(steps.NamespaceSpec{Name: namespace, AppName: appName}),
			}},
			{Label: "namespaceFilter", Steps: []Step{
				createNamespace("ns-1"),
				createNamespace("ns-2"),
				createConfiguration(steps.ConfigurationSpec{Name: "config-1", Namespace: "ns-1"}),
				createConfiguration(steps.ConfigurationSpec{Name: "config-2", Namespace: "ns-2"}),
				createApp(steps.AppSpec{Name: "testapp-1", Namespace: "ns-1", Archive: httpdImage, Instances: 1, SourceType: steps.SourceContainer}),
				createApp(steps.AppSpec{Name: "testapp-2", Namespace: "ns-2", Archive: httpdImage, Instances: 1, SourceType: steps.SourceContainer}),
				dashboard(steps.DashboardExpectation{NamespaceNumber: "3", NewestNamespaces: []string{"ns-2", "ns-1"}, AppNumber: "2", RunningApps: "2"}),
				openNamespacesFilter(steps.ResourceApplications),
				filterNamespaces(steps.FilterCheck{Namespace: "ns-1", ElementName: "testapp-1"}),
				filterNamespaces(steps.FilterCheck{Namespace: "ns-2", ElementName: "testapp-2"}),
				filterOutcome(steps.FilterOutcome{ExpectedFilteredNamespaces: 2, ExpectedElements: 2}),
				filterNamespaces(steps.FilterCheck{Namespace: "ns-2", ElementName: "testapp-2", FilterOut: true}),
				filterOutcome(steps.FilterOutcome{ExpectedFilteredNamespaces: 1, ExpectedElements: 1, ExpectedElementName: "testapp-1"}),
				clickEpinioMenu(steps.ResourceConfigurations),
				filterOutcome(steps.FilterOutcome{ExpectedFilteredNamespaces: 1, ExpectedElements: 1, ExpectedElementName: "config-1"}),
				filterNamespaces(steps.FilterCheck{Namespace: "ns-1", FilterOut: true}),
				filterOutcome(steps.FilterOutcome{ExpectedFilteredNamespaces: 0, ExpectedElements: 2, ExpectedElementName: "config-1"}),
				filterOutcome(steps.FilterOutcome{ExpectedFilteredNamespaces: 0, ExpectedElements: 2, ExpectedElementName: "config-2"}),
			}},
			{Label: "newNamespaceFromResource", Steps: []Step{
				clickEpinioMenu(steps.ResourceConfigurations),
				clickButton("Create"),
				namespaceFromResource(nsFromConfiguration),
				expandMenuGroup(0),
				clickText("Instances"),
				clickButton("Create"),
				namespaceFromResource(nsFromInstance),
				clickEpinioMenu(steps.ResourceApplications),
				clickButton("Create"),
				namespaceFromResource(nsFromApplication),
			}},
		},
	}
}

func connectionSuite() *Suite {
	return &Suite{
		Name: Connection,
		Cases: []Case{
			{Label: "firstConnection", Steps: []Step{
				firstConnection(),
			}},
		},
	}
}
