package steps

// DOM contract of the Epinio console. Kept in one place so a UI change is a
// one-line fix.
const (
	selSideNavLabel   = "nav.side-nav .label"
	selMenuGroup      = ".accordion.package.depth-0.has-children"
	selMenuGroupIcon  = "div.header > i"
	selOutletHeader   = ".outlet header h1"
	selHeadTitle      = ".head-title > h1"
	selButton         = "button, a.btn"
	selLabeledInput   = ".labeled-input"
	selPromptRemove   = ".prompt-remove"
	selPromptConfirm  = ".prompt-remove input#confirm"
	selPromptDelete   = ".prompt-remove .card-actions .btn.bg-error"
	selTableRow       = "tbody > tr.main-row"
	selRowCheckbox    = "td.row-check label.checkbox-container"
	selCheckAll       = "thead th.check label.checkbox-container"
	selActionMenu     = "button.role-multi-action, .actions .btn"
	selActionItem     = ".list-unstyled.menu li"
	selRowState       = "td .badge-state, td span.state"
	selNoRows         = "tbody tr.no-rows"
	selListLoaded     = selTableRow + ", " + selNoRows
	selSelectOption   = ".vs__dropdown-option"
	selSelectedChip   = ".vs__selected"
	selChipDeselect   = "button.vs__deselect"
	selModalPrimary   = ".card-container .card-actions .btn.role-primary"
	selFormFooter     = ".cru-resource-footer"
	selWindowClose    = ".window .tab .closer, .tab .closer"
	selLogsBody       = ".logs-container .logs-body"
	selShell          = ".xterm"
	selNamespaceInput = "[data-testid=\"name-ns-description-namespace\"] input"
	selNamespaceDrop  = "[data-testid=\"name-ns-description-namespace\"] .v-select"

	// Namespace filter in the header.
	selNsFilter       = "[data-testid=\"namespaces-filter\"]"
	selNsFilterOpen   = ".ns-options"
	selNsOption       = ".ns-options .ns-option"
	selNsFilterValues = "[data-testid=\"namespaces-values\"] .ns-value"

	// Login.
	selUsername    = "input#username"
	selPassword    = "input[type=\"password\"]"
	selLoginSubmit = "button#submit, button[type=\"submit\"]"
	selDexLogin    = "#login"
	selDexPassword = "#password"
	selDexSubmit   = "#submit-login"
	selDexGrant    = "button[type=\"submit\"].dex-btn, form button[type=\"submit\"]"

	// Rancher top-level menu.
	selTopMenuOpen    = ".side-menu.menu-open"
	selTopMenuToggle  = ".menu-icon, [data-testid=\"top-level-menu\"]"
	selEpinioIcon     = ".option img[src*=\"epinio\"], .option .icon-epinio"
	selTopMenuOption  = ".side-menu .option"
	selClusterListRow = "tbody tr td a"

	// Application create wizard.
	selSourceType      = "[data-testid=\"epinio_app-source_type\"]"
	selArchiveInput    = "[data-testid=\"epinio_app-source_archive_file\"] input[type=\"file\"], input[type=\"file\"]"
	selImageInput      = "[data-testid=\"epinio_app-source_container\"] input"
	selGitURLInput     = "[data-testid=\"epinio_app-source_git-url\"] input"
	selGitBranchInput  = "[data-testid=\"epinio_app-source_git-branch\"] input"
	selGitUsername     = "[data-testid=\"epinio_app-source_git-username\"] input"
	selGitRepo         = "[data-testid=\"epinio_app-source_git-repo\"]"
	selGitBranch       = "[data-testid=\"epinio_app-source_git-branch\"]"
	selGitCommit       = "[data-testid=\"epinio_app-source_git-commits\"] tbody tr"
	selManifestInput   = "[data-testid=\"epinio_app-source_manifest\"] input[type=\"file\"]"
	selAdvanced        = ".advanced .toggle"
	selBuilderImage    = "[data-testid=\"epinio_app-source_builder-select\"] input"
	selAppChart        = "[data-testid=\"epinio_app-source_appchart\"]"
	selInstances       = "[data-testid=\"epinio_app-instances\"] input"
	selRouteAdd        = "[data-testid=\"array-list-button\"]"
	selRouteInput      = "[data-testid=\"epinio_app-routes\"] input"
	selEnvAdd          = ".key-value .footer .add"
	selEnvKey          = ".key-value .kv-item.key input"
	selEnvValue        = ".key-value .kv-item.value textarea, .key-value .kv-item.value input"
	selEnvReadFile     = ".key-value .footer .read-from-file input[type=\"file\"]"
	selConfigsSelect   = "[data-testid=\"epinio_app-configurations\"] .v-select"
	selServicesSelect  = "[data-testid=\"epinio_app-services\"] .v-select"
	selDeploySteps     = ".steps-container .step"
	selDeployDone      = ".progress-row .badge-state"
	selWizardNext      = ".controls-row .btn.role-primary"
	selExportType      = "[data-testid=\"epinio_app-export\"] .radio-container"
	selExportButton    = "[data-testid=\"epinio_app-export\"] .btn.role-primary"
	selUploadValue     = ".key-value .kv-item.value .file-selector input[type=\"file\"]"

	// Application detail.
	selAppDetailHeader  = ".masthead .primaryheader h1"
	selAppNamespace     = ".masthead .subheader .namespace"
	selAppRoutes        = "[data-testid=\"epinio_app-routes-list\"] a"
	selAppInstances     = "[data-testid=\"epinio_app-instances-count\"]"
	selAppTab           = ".tabbed-container .tabs li a"
	selAppEnvRow        = "[data-testid=\"epinio_app-env\"] tbody tr"
	selAppConfigsPanel  = "[data-testid=\"epinio_app-configurations\"]"
	selAppServicesPanel = "[data-testid=\"epinio_app-services\"]"
	selAppCommit        = "[data-testid=\"epinio_app-source_commit\"]"
	selAppSourceIcon    = "[data-testid=\"epinio_app-source\"] i"
	selAppState         = ".masthead .badge-state"
	selCommitRow        = "[data-testid=\"epinio_app-commits\"] tbody tr"

	// Services.
	selCatalogSelect  = "[data-testid=\"epinio_service-catalog\"] .v-select"
	selServiceApps    = "[data-testid=\"epinio_service-apps\"] .v-select"
	selServiceBoundTo = "td.col-bound-apps, td[data-title=\"Bound Apps\"]"

	// Dashboard.
	selDashCard       = ".d-flex .card-container"
	selDashCardCount  = ".numbers, .head-number"
	selDashCardDetail = ".card-body span"
	selDashNamespace  = ".card-body ul li"
	selMainVersion    = ".version.text-muted > a"

	// About page.
	selAboutVersion  = ".about .version, .about-info .version"
	selBinaryRow     = ".about table tbody tr"
	selBinaryLink    = "td a"
	selSeeAllPackage = "a[href*=\"releases\"]"
)
