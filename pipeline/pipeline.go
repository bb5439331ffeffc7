// Package pipeline runs the full network construction sequence:
// expression matrix in, graph artifacts out.
package pipeline

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/coexnet/coexnet/lib/adjacency"
	"github.com/coexnet/coexnet/lib/annotation"
	"github.com/coexnet/coexnet/lib/cluster"
	"github.com/coexnet/coexnet/lib/datatypes"
	"github.com/coexnet/coexnet/lib/export"
	"github.com/coexnet/coexnet/lib/expression"
	"github.com/coexnet/coexnet/lib/graph"
	"github.com/coexnet/coexnet/lib/reporter"
	"github.com/coexnet/coexnet/lib/settings"
	"github.com/coexnet/coexnet/lib/similarity"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	numberOfGenes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "coexnet_number_of_genes",
			Help: "number of genes in the expression matrix",
		},
	)
	numberOfSamples = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "coexnet_number_of_samples",
			Help: "number of samples in the expression matrix",
		},
	)
	detectedModules = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "coexnet_detected_modules",
			Help: "number of detected co-expression modules",
		},
	)
	unassignedGenes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "coexnet_unassigned_genes",
			Help: "number of genes left outside all modules",
		},
	)
	networkVertices = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "coexnet_network_vertices",
			Help: "number of vertices in the exported network",
		},
	)
	networkEdges = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "coexnet_network_edges",
			Help: "number of edges in the exported network",
		},
	)
	pipelineRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coexnet_pipeline_runs_total",
			Help: "Total number of pipeline runs.",
		},
	)
	pipelineFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coexnet_pipeline_failures_total",
			Help: "Total number of failed pipeline runs.",
		},
	)
	stageDurationHist = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:                            "stage_duration_milliseconds_histogram",
			Help:                            "Duration of pipeline stages.",
			Buckets:                         prometheus.DefBuckets,
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  10,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
	)
	pipelineDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_duration_milliseconds",
			Help: "Duration of the last pipeline run.",
		},
	)
)

func init() {
	prometheus.MustRegister(numberOfGenes)
	prometheus.MustRegister(numberOfSamples)
	prometheus.MustRegister(detectedModules)
	prometheus.MustRegister(unassignedGenes)
	prometheus.MustRegister(networkVertices)
	prometheus.MustRegister(networkEdges)
	prometheus.MustRegister(pipelineRuns)
	prometheus.MustRegister(pipelineFailures)
	prometheus.MustRegister(stageDurationHist)
	prometheus.MustRegister(pipelineDuration)
}

// Result is what a pipeline run leaves behind.
type Result struct {
	Artifact    *graph.Artifact
	Modules     *cluster.ModuleAssignment
	GraphMLPath string
	DotPath     string
	Elapsed     time.Duration
}

func observeStage(stage string, start time.Time) {
	elapsed := time.Since(start)
	stageDurationHist.Observe(float64(elapsed.Milliseconds()))
	log.Printf("%s finished in %d milliseconds\n", stage, elapsed.Milliseconds())
}

// Run executes the pipeline for the given settings and writes the
// resulting artifacts into the results directory.
func Run(config settings.CoexnetSettings) (*Result, error) {
	config = config.ComputeSettingsFields()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	pipelineRuns.Inc()
	runStart := time.Now()

	result, err := run(config)
	if err != nil {
		pipelineFailures.Inc()
		return nil, err
	}
	result.Elapsed = time.Since(runStart)
	pipelineDuration.Set(float64(result.Elapsed.Milliseconds()))
	log.Printf("pipeline run finished in %d milliseconds\n", result.Elapsed.Milliseconds())
	return result, nil
}

func run(config settings.CoexnetSettings) (*Result, error) {
	expr, err := expression.ReadCSV(config.ExpressionFile)
	if err != nil {
		return nil, err
	}
	numberOfGenes.Set(float64(expr.GeneCount()))
	numberOfSamples.Set(float64(expr.SampleCount()))
	log.Printf("read %d genes with %d samples each from %s\n",
		expr.GeneCount(), expr.SampleCount(), config.ExpressionFile)

	var attrs *annotation.Aligned
	if config.AnnotationFile != "" {
		table, err := annotation.ReadCSV(config.AnnotationFile)
		if err != nil {
			return nil, err
		}
		attrs = table.Align(expr.Genes)
	}

	reportMemory("start similarity computation")
	adj, err := buildAdjacency(expr, config)
	if err != nil {
		return nil, err
	}

	if config.UseTOM {
		reportMemory("start topological overlap")
		stageStart := time.Now()
		adj, err = adjacency.TopologicalOverlap(adj, config.Workers)
		if err != nil {
			return nil, err
		}
		observeStage("topological overlap", stageStart)
	}

	reportMemory("start module detection")
	stageStart := time.Now()
	modules, err := cluster.DetectModules(adj, config.MinModuleSize, config.DeepSplit)
	if err != nil {
		if !config.AllowUnclustered || !errors.Is(err, datatypes.ErrInsufficientData) {
			return nil, err
		}
		log.Printf("not enough genes to cluster, continuing without modules: %v\n", err)
		modules = unclustered(adj.Genes)
	}
	observeStage("module detection", stageStart)
	detectedModules.Set(float64(modules.ModuleCount()))
	unassignedGenes.Set(float64(modules.UnassignedCount()))

	stageStart = time.Now()
	artifact, err := export.Export(adj, modules, attrs, export.Options{
		Name:         config.NetworkName,
		Threshold:    config.Threshold,
		MaxEdgeRatio: config.MaxEdgeRatio,
		Weighted:     config.Weighted,
	})
	if err != nil {
		return nil, err
	}
	observeStage("graph export", stageStart)
	networkVertices.Set(float64(artifact.VertexCount()))
	networkEdges.Set(float64(artifact.EdgeCount()))

	if err := os.MkdirAll(config.ResultsDirectory, 0750); err != nil {
		return nil, err
	}
	stamp := time.Now().UTC().Format("20060102150405")
	result := &Result{Artifact: artifact, Modules: modules}
	result.GraphMLPath = filepath.Join(config.ResultsDirectory,
		fmt.Sprintf("%s_%s.graphml", config.NetworkName, stamp))
	if err := graph.WriteGraphMLFile(artifact, result.GraphMLPath); err != nil {
		return nil, err
	}
	log.Printf("wrote network to %s\n", result.GraphMLPath)

	if config.WriteDot {
		result.DotPath = filepath.Join(config.ResultsDirectory,
			fmt.Sprintf("%s_%s.dot", config.NetworkName, stamp))
		if err := graph.WriteDotFile(artifact, result.DotPath); err != nil {
			return nil, err
		}
	}

	for _, rep := range secondaryReporters(config) {
		rep.Initialize(config, config.ResultsDirectory)
		if err := rep.WriteNetwork(artifact); err != nil {
			return nil, err
		}
		if err := rep.Flush(); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// buildAdjacency runs the similarity and adjacency stages. The dense
// similarity matrix only lives inside this call; once the adjacency
// matrix is derived the similarity values are garbage, and holding
// both matrices would double the quadratic memory footprint.
func buildAdjacency(expr *expression.Matrix, config settings.CoexnetSettings) (*datatypes.GeneMatrix, error) {
	stageStart := time.Now()
	sim, err := similarity.Compute(expr, similarity.Options{
		Alpha:   config.Alpha,
		Beta:    config.Beta,
		Workers: config.Workers,
	})
	if err != nil {
		return nil, err
	}
	observeStage("similarity computation", stageStart)

	stageStart = time.Now()
	adj, err := adjacency.Transform(sim, config.Power, config.Signed)
	if err != nil {
		return nil, err
	}
	observeStage("adjacency transform", stageStart)
	return adj, nil
}

func secondaryReporters(config settings.CoexnetSettings) []reporter.Reporter {
	var reporters []reporter.Reporter
	if config.WriteCsv {
		reporters = append(reporters, reporter.NewCsvReporter())
	}
	if config.WriteParquet {
		reporters = append(reporters, reporter.NewParquetReporter())
	}
	return reporters
}

// unclustered builds an assignment that leaves every gene outside all
// modules, for runs on inputs too small to cluster.
func unclustered(genes []string) *cluster.ModuleAssignment {
	labels := make([]int, len(genes))
	for i := range labels {
		labels[i] = cluster.Unassigned
	}
	return &cluster.ModuleAssignment{
		Genes:  append([]string(nil), genes...),
		Labels: labels,
	}
}
