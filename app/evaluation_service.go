package app

import (
	"context"
	"time"

	"clustereval/domain/core"
	"clustereval/domain/eval"
	"clustereval/internal"
	"clustereval/ports"
)

// EvaluationService wires the collaborators around the engine: load both
// tables, evaluate every trait, write the result table and report, and
// persist the run when a repository is configured.
type EvaluationService struct {
	phenotypes ports.PhenotypeReader
	clusters   ports.ClusterReader
	writer     ports.ResultWriter
	repository ports.RunRepository
	logger     *internal.Logger
}

// RunRequest defines the inputs of one evaluation run.
type RunRequest struct {
	PhenotypePath string
	ClusterPath   string
	Threshold     int
	ResultsDir    string
}

// NewEvaluationService creates an evaluation service. repository may be nil;
// runs are then only written to the results directory.
func NewEvaluationService(
	phenotypes ports.PhenotypeReader,
	clusters ports.ClusterReader,
	writer ports.ResultWriter,
	repository ports.RunRepository,
	logger *internal.Logger,
) *EvaluationService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &EvaluationService{
		phenotypes: phenotypes,
		clusters:   clusters,
		writer:     writer,
		repository: repository,
		logger:     logger,
	}
}

// Run executes one evaluation end to end and returns the stored record.
func (s *EvaluationService) Run(ctx context.Context, req RunRequest) (*ports.RunRecord, error) {
	orchestrator, err := eval.NewOrchestrator(req.Threshold)
	if err != nil {
		return nil, err
	}

	phenotypes, err := s.phenotypes.ReadPhenotypes(req.PhenotypePath)
	if err != nil {
		return nil, err
	}
	if len(phenotypes) == 0 {
		return nil, core.ErrEmptyPhenotypes
	}
	clusters, err := s.clusters.ReadClusters(req.ClusterPath)
	if err != nil {
		return nil, err
	}

	aligned, gaps := alignmentStats(phenotypes, clusters)
	if aligned == 0 {
		return nil, core.ErrNoCommonSamples
	}
	if gaps > 0 {
		s.logger.Warn("excluding %d samples present in only one input", gaps)
	}

	started := time.Now()
	rows, err := orchestrator.Evaluate(ctx, clusters, phenotypes)
	if err != nil {
		return nil, err
	}
	s.logger.Info("evaluated %d traits against %d clusters in %s",
		len(rows), len(clusters.Labels()), time.Since(started).Round(time.Millisecond))

	record := &ports.RunRecord{
		ID:            core.NewRunID(),
		Threshold:     req.Threshold,
		PhenotypePath: req.PhenotypePath,
		ClusterPath:   req.ClusterPath,
		CreatedAt:     time.Now().UTC(),
		Rows:          rows,
	}

	resultPath, err := s.writer.WriteResults(req.ResultsDir, rows)
	if err != nil {
		return nil, err
	}
	record.ResultPath = resultPath
	if _, err := s.writer.WriteReport(req.ResultsDir, record); err != nil {
		return nil, err
	}

	if s.repository != nil {
		if err := s.repository.SaveRun(ctx, record); err != nil {
			return nil, err
		}
	}

	s.logger.Info("run %s complete: results at %s", record.ID, resultPath)
	return record, nil
}

// alignmentStats counts samples shared by the two inputs and samples present
// in only one of them. Samples on one side only are excluded, never fatal.
func alignmentStats(phenotypes core.PhenotypeTable, clusters core.ClusterAssignment) (aligned, gaps int) {
	ids := make(map[core.SampleID]bool)
	for _, trait := range phenotypes {
		for id := range trait.Values {
			ids[id] = true
		}
	}
	for id := range ids {
		if _, ok := clusters[id]; ok {
			aligned++
		} else {
			gaps++
		}
	}
	for id := range clusters {
		if !ids[id] {
			gaps++
		}
	}
	return aligned, gaps
}
