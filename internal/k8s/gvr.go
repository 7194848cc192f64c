package k8s

import "k8s.io/apimachinery/pkg/runtime/schema"

// Group version resources for the OLM and Open Data Hub APIs touched during
// setup. All of these are served as custom resources, so they are accessed
// through the dynamic client.
var (
	CatalogSources = schema.GroupVersionResource{
		Group: "operators.coreos.com", Version: "v1alpha1", Resource: "catalogsources",
	}
	Subscriptions = schema.GroupVersionResource{
		Group: "operators.coreos.com", Version: "v1alpha1", Resource: "subscriptions",
	}
	InstallPlans = schema.GroupVersionResource{
		Group: "operators.coreos.com", Version: "v1alpha1", Resource: "installplans",
	}
	ClusterServiceVersions = schema.GroupVersionResource{
		Group: "operators.coreos.com", Version: "v1alpha1", Resource: "clusterserviceversions",
	}
	OperatorGroups = schema.GroupVersionResource{
		Group: "operators.coreos.com", Version: "v1", Resource: "operatorgroups",
	}
	PackageManifests = schema.GroupVersionResource{
		Group: "packages.operators.coreos.com", Version: "v1", Resource: "packagemanifests",
	}
	DSCInitializations = schema.GroupVersionResource{
		Group: "dscinitialization.opendatahub.io", Version: "v1", Resource: "dscinitializations",
	}
	DataScienceClusters = schema.GroupVersionResource{
		Group: "datasciencecluster.opendatahub.io", Version: "v1", Resource: "datascienceclusters",
	}
)
