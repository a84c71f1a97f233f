package steps

// SourceType is the application source offered by the create wizard.
type SourceType string

const (
	SourceArchive   SourceType = "Archive"
	SourceContainer SourceType = "Container Image"
	SourceGitURL    SourceType = "Git URL"
	SourceGitHub    SourceType = "GitHub"
	SourceGitLab    SourceType = "GitLab"
	SourceFolder    SourceType = "Folder"
)

// EnvVars selects how environment variables are added to a new app.
type EnvVars string

const (
	VarsUI        EnvVars = "ui"
	VarsFile      EnvVars = "file"
	VarsGoExample EnvVars = "go_example"
	VarsWordpress EnvVars = "wordpress_env_file"
)

// ExportType is one of the options of the "Export App" dialog.
type ExportType string

const (
	ExportManifest       ExportType = "Manifest"
	ExportChartAndImages ExportType = "Chart and Images"
)

// Binding direction used on the services page.
const (
	Bind   = "bind"
	Unbind = "unbind"
)

// AppSpec describes an application to push through the create wizard.
// Archive holds the archive file, the container image or the git URL,
// depending on SourceType.
type AppSpec struct {
	Name                   string     `validate:"omitempty,hostname_rfc1123"`
	Namespace              string     `validate:"omitempty,hostname_rfc1123"`
	SourceType             SourceType `validate:"epinio_source"`
	Archive                string
	Route                  string     `validate:"omitempty,max=253"`
	Instances              int        `validate:"min=0,max=100"`
	AddVar                 EnvVars    `validate:"omitempty,oneof=ui file go_example wordpress_env_file"`
	ConfigurationName      string
	ServiceName            string
	CatalogType            string
	CustomPaketoImage      string
	CustomApplicationChart string
	GitUsername            string
	GitRepo                string
	GitBranch              string
	GitCommit              string
	ManifestName           string
}

// AppCheck lists what CheckApp asserts on an application. Zero values are
// skipped, except CheckConfiguration which asserts "No configuration"
// when false.
type AppCheck struct {
	Name                 string `validate:"required,hostname_rfc1123"`
	Namespace            string `validate:"omitempty,hostname_rfc1123"`
	Route                string
	CheckVar             bool
	CheckConfiguration   bool
	ServiceName          string
	CheckCreatedApp      string
	CheckCommit          string
	CheckIcon            string `validate:"omitempty,oneof=file gitlab github git container"`
	Instances            int    `validate:"min=0"`
	DontCheckRouteAccess bool
}

// ConfigurationSpec describes a configuration to create. FromFile reads
// its values from the config env fixture, FromFileUpload uploads a file.
type ConfigurationSpec struct {
	Name           string `validate:"required,hostname_rfc1123"`
	Namespace      string `validate:"omitempty,hostname_rfc1123"`
	FromFile       bool   `validate:"excluded_with=FromFileUpload"`
	FromFileUpload bool
}

// NamespaceSpec names a namespace and, optionally, an app that the delete
// prompt must list.
type NamespaceSpec struct {
	Name    string `validate:"required,hostname_rfc1123"`
	AppName string
}

// ServiceSpec is shared by the service operations; each operation
// validates only the fields it uses.
type ServiceSpec struct {
	Name          string `validate:"required,hostname_rfc1123"`
	CatalogType   string `validate:"required"`
	AppName       string `validate:"required"`
	BindingOption string `validate:"required,oneof=bind unbind"`
}

// DashboardExpectation holds expected dashboard figures. Empty fields are
// not checked.
type DashboardExpectation struct {
	NamespaceNumber  string   `validate:"omitempty,numeric"`
	NewestNamespaces []string `validate:"dive,required"`
	AppNumber        string   `validate:"omitempty,numeric"`
	RunningApps      string   `validate:"omitempty,numeric"`
	ServicesNumber   string   `validate:"omitempty,numeric"`
}

// FilterCheck toggles one namespace in the header filter. ElementName, when
// set, must appear (or disappear when FilterOut) from the listing.
type FilterCheck struct {
	Namespace   string `validate:"required"`
	ElementName string
	FilterOut   bool
}

// FilterOutcome is the expected state of a filtered listing.
type FilterOutcome struct {
	ExpectedFilteredNamespaces int `validate:"min=0"`
	ExpectedElements           int `validate:"min=0"`
	ExpectedElementName        string
}

// LinkCheck describes a link and where it should lead. Links to another
// origin are only checked for their href. Stay keeps the browser on the
// landing page instead of going back.
type LinkCheck struct {
	Text        string `validate:"required"`
	Href        string `validate:"required"`
	LandingText string
	Stay        bool
}

// AboutOptions selects the optional checks of AboutPage.
type AboutOptions struct {
	CompareVersionVsMainPage bool
	CheckBinariesNumber      bool
	DownloadBinaries         bool
	CheckSeeAllPackagePage   bool
}
