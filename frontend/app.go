package main

import (
	"context"
	"flag"
	"github.com/coexnet/coexnet/explorer"
	"github.com/coexnet/coexnet/lib/settings"
	"github.com/coexnet/coexnet/pipeline"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"time"
)

type config struct {
	explorerAddress string
	metricsAddress  string
}

func main() {
	var metricsAddr string
	var explorerAddr string
	var configFile string
	var expressionFile string
	var annotationFile string
	var alpha float64
	var beta float64
	var power float64
	var signed bool
	var useTOM bool
	var minModuleSize int
	var deepSplit bool
	var threshold float64
	var maxEdgeRatio float64
	var weighted bool
	var allowUnclustered bool
	var workers int
	var networkName string
	var resultsDirectory string
	var writeDot bool
	var writeCsv bool
	var writeParquet bool
	var parquetMaxRowsPerRowGroup int
	var justExplore bool
	var noExplore bool
	var networkMaxAgeSeconds int

	flag.StringVar(&metricsAddr, "metrics-address", ":9203", "The address the metrics endpoint binds to.")
	flag.StringVar(&explorerAddr, "explorer-address", ":9205", "The address that the explorer endpoint binds to.")

	flag.StringVar(&configFile, "config", "", "Path to a toml file with settings. Flags that are set explicitly win over the file.")
	flag.StringVar(&expressionFile, "expressionFile", "", "csv file with one row per gene and one column per sample")
	flag.StringVar(&annotationFile, "annotationFile", "", "optional csv file with gene annotations, keyed by gene_id")
	flag.Float64Var(&alpha, "alpha", settings.DefaultAlpha, "weight of the correlation term in the hybrid similarity")
	flag.Float64Var(&beta, "beta", settings.DefaultBeta, "weight of the distance term. alpha and beta must sum to 1")
	flag.Float64Var(&power, "power", settings.DefaultPower, "soft threshold exponent applied to the similarity")
	flag.BoolVar(&signed, "signed", true, "Whether to keep negative correlations down-weighted instead of folding them into their absolute value")
	flag.BoolVar(&useTOM, "useTOM", false, "Whether to cluster on topological overlap instead of raw adjacency")
	flag.IntVar(&minModuleSize, "minModuleSize", settings.DefaultMinModuleSize, "the smallest branch of the dendrogram that can become a module")
	flag.BoolVar(&deepSplit, "deepSplit", true, "split nested sub-clusters off more aggressively, giving more and smaller modules")
	flag.Float64Var(&threshold, "threshold", settings.DefaultThreshold, "requested edge weight cutoff for the export step")
	flag.Float64Var(&maxEdgeRatio, "maxEdgeRatio", settings.DefaultMaxEdgeRatio, "export at most maxEdgeRatio times the vertex count edges")
	flag.BoolVar(&weighted, "weighted", true, "keep rescaled edge weights. If false, surviving edges all get weight 1")
	flag.BoolVar(&allowUnclustered, "allowUnclustered", false, "export the graph without module labels when there are too few genes to cluster")
	flag.IntVar(&workers, "workers", 0, "number of workers for the parallel stages. 0 picks the cpu count")
	flag.StringVar(&networkName, "networkName", "coexnet", "prefix for the artifact filenames")
	flag.StringVar(&resultsDirectory, "resultsDirectory", "/tmp/coexnetResults", "The directory with the result files.")
	flag.BoolVar(&writeDot, "writeDot", false, "also write a graphviz dot rendering of the network")
	flag.BoolVar(&writeCsv, "writeCsv", false, "also write vertex and edge csv tables")
	flag.BoolVar(&writeParquet, "writeParquet", false, "also write a parquet dump of the network")
	flag.IntVar(&parquetMaxRowsPerRowGroup, "parquetMaxRowsPerRowGroup", 100000, "Number of rows per row group in Parquet. Small numbers reduce memory usage but cost more disk space; large numbers cost more memory but improve compression.")
	flag.BoolVar(&justExplore, "justExplore", false, "If true, launch only the explorer endpoint")
	flag.BoolVar(&noExplore, "noExplore", false, "If true, do not launch the explorer endpoint")
	flag.IntVar(&networkMaxAgeSeconds, "networkMaxAgeSeconds", 0, "Delete network artifacts older than this. 0 keeps them forever.")

	flag.Parse()

	cfg := &config{
		metricsAddress:  metricsAddr,
		explorerAddress: explorerAddr,
	}

	coexnetConfig := settings.DefaultSettings()
	if configFile != "" {
		var err error
		coexnetConfig, err = settings.FromFile(configFile)
		if err != nil {
			log.Fatal(err)
		}
	}

	// Flags the user set explicitly win over the settings file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "expressionFile":
			coexnetConfig.ExpressionFile = expressionFile
		case "annotationFile":
			coexnetConfig.AnnotationFile = annotationFile
		case "alpha":
			coexnetConfig.Alpha = alpha
		case "beta":
			coexnetConfig.Beta = beta
		case "power":
			coexnetConfig.Power = power
		case "signed":
			coexnetConfig.Signed = signed
		case "useTOM":
			coexnetConfig.UseTOM = useTOM
		case "minModuleSize":
			coexnetConfig.MinModuleSize = minModuleSize
		case "deepSplit":
			coexnetConfig.DeepSplit = deepSplit
		case "threshold":
			coexnetConfig.Threshold = threshold
		case "maxEdgeRatio":
			coexnetConfig.MaxEdgeRatio = maxEdgeRatio
		case "weighted":
			coexnetConfig.Weighted = weighted
		case "allowUnclustered":
			coexnetConfig.AllowUnclustered = allowUnclustered
		case "workers":
			coexnetConfig.Workers = workers
		case "networkName":
			coexnetConfig.NetworkName = networkName
		case "resultsDirectory":
			coexnetConfig.ResultsDirectory = resultsDirectory
		case "writeDot":
			coexnetConfig.WriteDot = writeDot
		case "writeCsv":
			coexnetConfig.WriteCsv = writeCsv
		case "writeParquet":
			coexnetConfig.WriteParquet = writeParquet
		case "parquetMaxRowsPerRowGroup":
			coexnetConfig.MaxRowsPerRowGroup = int64(parquetMaxRowsPerRowGroup)
		}
	})
	coexnetConfig = coexnetConfig.ComputeSettingsFields()

	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(cfg.metricsAddress, nil)

	if !justExplore {
		if coexnetConfig.ExpressionFile == "" {
			log.Fatal("an expression file is required unless -justExplore is set")
		}
		result, err := pipeline.Run(coexnetConfig)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("network construction done, graph artifact at %s\n", result.GraphMLPath)
	}

	if noExplore {
		return
	}

	expl := &explorer.NetworkExplorer{
		FilenameBase: coexnetConfig.ResultsDirectory,
	}
	if err := expl.Initialize(networkMaxAgeSeconds); err != nil {
		log.Printf("failed to initialize explorer: %v\n", err)
	}

	explorerRouter := mux.NewRouter().StrictSlash(true)
	explorerRouter.HandleFunc("/networks", expl.GetNetworks).Methods("GET")
	explorerRouter.HandleFunc("/modules", expl.GetModules).Methods("GET")
	explorerRouter.HandleFunc("/nodes", expl.GetModuleNodes).Methods("GET")
	explorerRouter.HandleFunc("/edges", expl.GetModuleEdges).Methods("GET")
	explorerRouter.HandleFunc("/subgraphs", expl.GetSubgraphs).Methods("GET")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	explorerServer := &http.Server{
		Addr:    cfg.explorerAddress,
		Handler: explorerRouter,
	}
	go func() {
		log.Printf("explorer service listening on port %s\n", cfg.explorerAddress)
		if err := explorerServer.ListenAndServe(); err != nil {
			if err != http.ErrServerClosed {
				log.Fatal(err)
			}
		}
	}()

	<-stop
	log.Println("explorer service shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := explorerServer.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
