package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sqliteadapter "github.com/khanakhazana/foodlog/internal/adapters/db/sqlite"
	httpadapter "github.com/khanakhazana/foodlog/internal/adapters/http"
	rpcadapter "github.com/khanakhazana/foodlog/internal/adapters/rpcjson"
	"github.com/khanakhazana/foodlog/internal/application"
	"github.com/khanakhazana/foodlog/internal/catalog"
	"github.com/khanakhazana/foodlog/internal/config"
	"github.com/khanakhazana/foodlog/internal/domain"
	"github.com/khanakhazana/foodlog/internal/logging"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "foodlog",
		Usage: "Personal nutrition log server and CLI",
		Commands: []*cli.Command{
			serverCommand(),
			authCommand(),
			foodsCommand(),
			logCommand(),
			overrideCommand(),
			reportCommand(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServer(ctx, config.Load())
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		log.Fatal(err)
	}
}

func serverCommand() *cli.Command {
	cfg := config.Load()
	return &cli.Command{
		Name:  "server",
		Usage: "Run HTTP and JSON-RPC server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: cfg.Addr, Usage: "HTTP listen address"},
			&cli.StringFlag{Name: "rpc-socket", Value: cfg.RPCSocket, Usage: "JSON-RPC unix socket path"},
			&cli.StringFlag{Name: "db-path", Value: cfg.DBPath, Usage: "SQLite database path"},
			&cli.StringFlag{Name: "servings-csv", Value: cfg.ServingsCSV, Usage: "per-serving nutrition CSV"},
			&cli.StringFlag{Name: "grams-csv", Value: cfg.GramsCSV, Usage: "per-100g nutrition CSV"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.Addr = c.String("addr")
			cfg.RPCSocket = c.String("rpc-socket")
			cfg.DBPath = c.String("db-path")
			cfg.ServingsCSV = c.String("servings-csv")
			cfg.GramsCSV = c.String("grams-csv")
			return runServer(ctx, cfg)
		},
	}
}

func runServer(ctx context.Context, cfg config.Config) error {
	logger, err := logging.New(cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	foods, err := catalog.Load(cfg.ServingsCSV, cfg.GramsCSV)
	if err != nil {
		return err
	}

	db, err := sqliteadapter.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	if err := sqliteadapter.RunMigrations(ctx, db); err != nil {
		return err
	}

	service, err := application.NewFoodLogService(
		foods,
		sqliteadapter.NewLogRepository(db),
		sqliteadapter.NewOverrideRepository(db),
		sqliteadapter.NewSessionRepository(db),
		cfg.AccessSecret,
	)
	if err != nil {
		return err
	}

	router := httpadapter.NewRouter(service, logger)
	srv := &http.Server{Addr: cfg.Addr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	rpcSrv, err := rpcadapter.Start(cfg.RPCSocket, service)
	if err != nil {
		return err
	}

	defer func() {
		_ = rpcSrv.Close()
	}()
	logger.Info("json-rpc listening", zap.String("socket", cfg.RPCSocket))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Session commands",
		Commands: []*cli.Command{
			{
				Name:  "unlock",
				Usage: "Unlock the log and store the CLI token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "transport", Value: "uds"},
					&cli.StringFlag{Name: "server", Value: "http://127.0.0.1:8080"},
					&cli.StringFlag{Name: "socket", Value: "/tmp/foodlog.sock"},
					&cli.StringFlag{Name: "secret", Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg := cliConfig{Transport: c.String("transport"), Server: c.String("server"), Socket: c.String("socket")}
					var out struct {
						Token string `json:"token"`
					}
					if err := doUnlock(ctx, cfg, c.String("secret"), &out); err != nil {
						return err
					}
					cfg.Token = out.Token
					if err := saveConfig(cfg); err != nil {
						return err
					}
					fmt.Println("unlocked")
					return nil
				},
			},
			{
				Name:  "lock",
				Usage: "Lock the log and clear the CLI token",
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					_ = doLock(ctx, cfg)
					cfg.Token = ""
					if err := saveConfig(cfg); err != nil {
						return err
					}
					fmt.Println("locked")
					return nil
				},
			},
		},
	}
}

func foodsCommand() *cli.Command {
	return &cli.Command{
		Name:  "foods",
		Usage: "Food catalog commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List catalog dishes",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "basis", Value: "Servings", Usage: "Servings or Grams"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.CatalogEntry
					if err := doFoodsList(ctx, cfg, c.String("basis"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printCatalogEntries(out)
					return nil
				},
			},
			{
				Name:  "search",
				Usage: "Search catalog dishes by name",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "q", Required: true},
					&cli.StringFlag{Name: "basis", Value: "Servings", Usage: "Servings or Grams"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.CatalogEntry
					if err := doFoodsSearch(ctx, cfg, c.String("q"), c.String("basis"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printCatalogEntries(out)
					return nil
				},
			},
		},
	}
}

func logCommand() *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "Food log commands",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Log a dish",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dish", Required: true},
					&cli.FloatFlag{Name: "quantity", Required: true, Usage: "servings count or grams"},
					&cli.StringFlag{Name: "basis", Value: "Servings", Usage: "Servings or Grams"},
					&cli.StringFlag{Name: "date", Usage: "YYYY-MM-DD, defaults to today"},
					&cli.BoolFlag{Name: "preview", Usage: "scale without logging"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if c.Bool("preview") {
						var out domain.NutrientVector
						if err := doLogPreview(ctx, cfg, c.String("dish"), c.String("basis"), c.Float("quantity"), &out); err != nil {
							return err
						}
						if c.Bool("json") {
							return printJSON(out)
						}
						printNutrients(out)
						return nil
					}
					var out domain.LogEntry
					if err := doLogAppend(ctx, cfg, c.String("dish"), c.String("basis"), c.Float("quantity"), c.String("date"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printLogEntries([]domain.LogEntry{out})
					return nil
				},
			},
			{
				Name:  "creatine",
				Usage: "Log creatine grams",
				Flags: []cli.Flag{
					&cli.FloatFlag{Name: "grams", Required: true},
					&cli.StringFlag{Name: "date", Usage: "YYYY-MM-DD, defaults to today"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.LogEntry
					if err := doLogCreatine(ctx, cfg, c.Float("grams"), c.String("date"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printLogEntries([]domain.LogEntry{out})
					return nil
				},
			},
			{
				Name:  "today",
				Usage: "Show today's log and totals",
				Flags: []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out dayLogView
					if err := doLogToday(ctx, cfg, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printLogEntries(out.Entries)
					fmt.Printf("totals for %s\n", out.Date)
					printNutrients(out.Totals)
					return nil
				},
			},
			{
				Name:  "last",
				Usage: "Show entries and totals for the last N days",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "days", Value: 3},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out lastDaysView
					if err := doLogLast(ctx, cfg, c.Int("days"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printLogEntries(out.Entries)
					printDayTotals(out.Days)
					return nil
				},
			},
			{
				Name:  "clear-today",
				Usage: "Delete all of today's entries",
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doLogClearDay(ctx, cfg, domain.Today()); err != nil {
						return err
					}
					fmt.Println("cleared")
					return nil
				},
			},
			{
				Name:  "delete",
				Usage: "Delete a log entry by id",
				Flags: []cli.Flag{&cli.UintFlag{Name: "id", Required: true}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doLogDelete(ctx, cfg, c.Uint("id")); err != nil {
						return err
					}
					fmt.Println("deleted")
					return nil
				},
			},
		},
	}
}

func overrideCommand() *cli.Command {
	return &cli.Command{
		Name:  "override",
		Usage: "Per-100g nutrition override commands",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Show the stored override for a dish",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dish", Required: true},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Override
					if err := doOverrideGet(ctx, cfg, c.String("dish"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printOverride(out)
					return nil
				},
			},
			{
				Name:  "set",
				Usage: "Save per-100g values for a dish; omitted flags keep the catalog value",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dish", Required: true},
					&cli.FloatFlag{Name: "calories"},
					&cli.FloatFlag{Name: "carbohydrates"},
					&cli.FloatFlag{Name: "protein"},
					&cli.FloatFlag{Name: "fats"},
					&cli.FloatFlag{Name: "free-sugar"},
					&cli.FloatFlag{Name: "fibre"},
					&cli.FloatFlag{Name: "sodium"},
					&cli.FloatFlag{Name: "calcium"},
					&cli.FloatFlag{Name: "iron"},
					&cli.FloatFlag{Name: "vitamin-c"},
					&cli.FloatFlag{Name: "folate"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					values := domain.OverrideVector{
						Calories:      floatFlag(c, "calories"),
						Carbohydrates: floatFlag(c, "carbohydrates"),
						Protein:       floatFlag(c, "protein"),
						Fats:          floatFlag(c, "fats"),
						FreeSugar:     floatFlag(c, "free-sugar"),
						Fibre:         floatFlag(c, "fibre"),
						Sodium:        floatFlag(c, "sodium"),
						Calcium:       floatFlag(c, "calcium"),
						Iron:          floatFlag(c, "iron"),
						VitaminC:      floatFlag(c, "vitamin-c"),
						Folate:        floatFlag(c, "folate"),
					}
					var out domain.Override
					if err := doOverrideSave(ctx, cfg, c.String("dish"), values, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printOverride(out)
					return nil
				},
			},
		},
	}
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Reporting commands",
		Commands: []*cli.Command{
			{
				Name:  "month",
				Usage: "Monday-first calendar with daily calorie totals",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "year", Value: time.Now().Year()},
					&cli.IntFlag{Name: "month", Value: int(time.Now().Month())},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.CalendarCell
					if err := doLogMonth(ctx, cfg, c.Int("year"), c.Int("month"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printCalendar(c.Int("year"), c.Int("month"), out)
					return nil
				},
			},
		},
	}
}

func floatFlag(c *cli.Command, name string) *float64 {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Float(name)
	return &v
}

func jsonMarshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
