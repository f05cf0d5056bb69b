package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/doctriage/internal/ai"
	"github.com/xxxsen/doctriage/internal/catalog"
	"github.com/xxxsen/doctriage/internal/classify"
	"github.com/xxxsen/doctriage/internal/config"
	"github.com/xxxsen/doctriage/internal/db"
	"github.com/xxxsen/doctriage/internal/embedcache"
	"github.com/xxxsen/doctriage/internal/entity"
	"github.com/xxxsen/doctriage/internal/filestore"
	"github.com/xxxsen/doctriage/internal/job"
	"github.com/xxxsen/doctriage/internal/model"
	"github.com/xxxsen/doctriage/internal/report"
	"github.com/xxxsen/doctriage/internal/repo"
	"github.com/xxxsen/doctriage/internal/schedule"
)

const embedCacheSize = 4096

type runtimeDeps struct {
	cfg      *config.Config
	db       *sql.DB
	store    *repo.Store
	cats     []*model.Category
	embedder ai.IEmbedder
	reporter *report.Writer
}

func setup(configPath string) (*runtimeDeps, error) {
	if configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Catalog problems are fatal before any document is touched.
	cats, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("catalog loaded",
		zap.String("path", cfg.CatalogPath), zap.Int("categories", len(cats)))

	deps := &runtimeDeps{
		cfg:   cfg,
		db:    conn,
		store: repo.NewStore(conn),
		cats:  cats,
	}
	if cfg.AI.Provider != "" {
		var embedder ai.IEmbedder = ai.NewLazyEmbedder(cfg.AI.Provider, cfg.AI.Model, cfg.AI.Data)
		deps.embedder = embedcache.WrapLruCacheToEmbedder(embedder, embedCacheSize, 24*time.Hour)
	}
	if cfg.Report.Enabled {
		store, err := filestore.New(cfg.Report.Type, cfg.Report.Data)
		if err != nil {
			return nil, fmt.Errorf("init report store: %w", err)
		}
		deps.reporter = report.NewWriter(store)
	}
	return deps, nil
}

func main() {
	var (
		configPath string
		state      string
		limit      int
		apply      bool
	)

	rootCmd := &cobra.Command{
		Use:   "doctriage",
		Short: "classify scanned legal/financial documents and infer entity roles",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	classifyCmd := &cobra.Command{
		Use:   "classify",
		Short: "classify documents for one state",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := setup(configPath)
			if err != nil {
				return err
			}
			defer deps.db.Close()
			return runClassify(cmd.Context(), deps, state, limit, apply)
		},
	}
	classifyCmd.Flags().StringVar(&state, "state", "", "state code (TS or KA), defaults from config")
	classifyCmd.Flags().IntVar(&limit, "limit", 0, "max documents to process (0 = all)")
	classifyCmd.Flags().BoolVar(&apply, "apply", false, "write results back to the database")

	rolesCmd := &cobra.Command{
		Use:   "roles",
		Short: "cluster documents by legal entity and assign developer/group roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := setup(configPath)
			if err != nil {
				return err
			}
			defer deps.db.Close()
			return runRoles(cmd.Context(), deps, apply)
		},
	}
	rolesCmd.Flags().BoolVar(&apply, "apply", false, "write roles back to the database")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "run classification and role inference on the configured cron specs",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := setup(configPath)
			if err != nil {
				return err
			}
			defer deps.db.Close()
			return runSchedule(deps)
		},
	}

	rootCmd.AddCommand(classifyCmd, rolesCmd, scheduleCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

func runClassify(ctx context.Context, deps *runtimeDeps, state string, limit int, apply bool) error {
	if state == "" {
		state = deps.cfg.DefaultState
	}
	resolver := classify.NewResolver(deps.store, deps.embedder, deps.cfg.ResolveTuning())
	summary, err := resolver.Run(ctx, deps.cats, classify.RunOptions{
		State: state,
		Limit: limit,
		Apply: apply,
	})
	if err != nil {
		return err
	}
	for _, res := range summary.Results {
		ruleTag := ""
		if res.Rule != nil {
			ruleTag = fmt.Sprintf("  (rule:%s %.3f)", res.Rule.Slug, res.Rule.Score)
		}
		fmt.Printf("[%s] #%d %s -> %s (%s) score=%.3f  fn=%.3f kw=%.3f emb=%.3f%s\n",
			res.Status, res.DocID, res.DocumentName, res.Display, res.Slug, res.Final,
			res.Parts.Filename, res.Parts.Keyword, res.Parts.Embedding, ruleTag)
	}
	mode := "dry run only"
	if apply {
		mode = "applied to db"
	}
	fmt.Printf("done (%s): %d documents, %d applied, %d failed\n",
		mode, summary.Total, summary.Applied, len(summary.FailedIDs))

	if deps.reporter != nil {
		if err := deps.reporter.Write(ctx, state, summary); err != nil {
			logutil.GetLogger(ctx).Error("write report failed", zap.Error(err))
		}
	}
	// Unassigned documents are a normal outcome, never an error exit.
	return nil
}

func runRoles(ctx context.Context, deps *runtimeDeps, apply bool) error {
	inferrer := entity.NewInferrer(deps.store)
	summary, err := inferrer.Run(ctx, apply)
	if err != nil {
		return err
	}
	if summary.NothingToAssign {
		fmt.Println("no identifiable entities by PAN/GSTIN/LLPIN/CIN; nothing to assign")
		return nil
	}
	for _, c := range summary.Clusters {
		fmt.Printf("[%s] entity=%s variant=%s docs=%d dev=%d grp=%d\n",
			c.Role, c.Key, c.OrgVariant, len(c.Docs), c.DevScore, c.GroupScore)
	}
	fmt.Printf("done: %d clusters, %d documents updated, %d failed\n",
		len(summary.Clusters), summary.DocsUpdated, len(summary.FailedIDs))
	return nil
}

func runSchedule(deps *runtimeDeps) error {
	cfg := deps.cfg
	if cfg.Jobs.ClassifySpec == "" && cfg.Jobs.RolesSpec == "" {
		return fmt.Errorf("jobs.classify_spec or jobs.roles_spec is required for schedule mode")
	}
	scheduler := schedule.NewCronScheduler()
	if cfg.Jobs.ClassifySpec != "" {
		resolver := classify.NewResolver(deps.store, deps.embedder, cfg.ResolveTuning())
		classifyJob := job.NewClassifyJob(resolver, deps.cats, cfg.DefaultState, cfg.Jobs.Apply, deps.reporter)
		if err := scheduler.AddJob(classifyJob, cfg.Jobs.ClassifySpec); err != nil {
			return err
		}
	}
	if cfg.Jobs.RolesSpec != "" {
		rolesJob := job.NewRolesJob(entity.NewInferrer(deps.store), cfg.Jobs.Apply)
		if err := scheduler.AddJob(rolesJob, cfg.Jobs.RolesSpec); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start(ctx)
	logutil.GetLogger(ctx).Info("scheduler running")
	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("scheduler stopping...")
	scheduler.Stop()
	return nil
}
