package ports

import (
	"clustereval/domain/core"
)

// PhenotypeReader loads a phenotype table from disk: header row of trait
// names, first column sample IDs, cells already typed as numeric, text, or
// missing by the adapter.
type PhenotypeReader interface {
	ReadPhenotypes(path string) (core.PhenotypeTable, error)
}

// ClusterReader loads a sample-to-cluster mapping from disk.
type ClusterReader interface {
	ReadClusters(path string) (core.ClusterAssignment, error)
}
