package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/lychee-technology/formwave"
	"github.com/lychee-technology/formwave/factory"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := formwave.LoadConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		panic(fmt.Errorf("failed to set up logger: %w", err))
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	svc, err := factory.NewServices(ctx, cfg)
	if err != nil {
		sugar.Fatalf("failed to build services: %v", err)
	}
	defer svc.Close()

	a := newApp(svc, cfg, os.Stdout)
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, errUnknownCommand) {
			printUsage()
		}
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], userMessage(err))
		}
		svc.Close()
		logger.Sync()
		os.Exit(1)
	}
}

// newLogger builds a production logger, or a development one for the
// console format, at the configured level.
func newLogger(cfg formwave.LoggingConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}

func userMessage(err error) string {
	var fe *formwave.Error
	if errors.As(err, &fe) {
		if fe.Field != "" {
			return fmt.Sprintf("%s (%s)", fe.Message, fe.Field)
		}
		return fe.Message
	}
	return err.Error()
}

func printUsage() {
	fmt.Println("Usage: formwave <command> [options]")
	fmt.Println("")
	fmt.Println("Account:")
	fmt.Println("  register --email E --password P     Create an account and sign in")
	fmt.Println("  login --email E --password P        Sign in and store the session")
	fmt.Println("  logout                              Drop the stored session")
	fmt.Println("  whoami                              Show the signed-in user")
	fmt.Println("  reset-password --email E            Request a password reset link")
	fmt.Println("  profile [--name N] [--avatar URL]   Update the profile")
	fmt.Println("")
	fmt.Println("Forms:")
	fmt.Println("  list                                List your forms")
	fmt.Println("  show <id>                           Print a form as JSON")
	fmt.Println("  new --title T [--description D]     Create and save a form")
	fmt.Println("  add-field <id> --type T [--label L] [--required] [--top]")
	fmt.Println("  remove-field <id> <field-id>        Remove a field")
	fmt.Println("  move-field <id> <field-id> up|down  Move a field one step")
	fmt.Println("  duplicate <id>                      Copy a form and save the copy")
	fmt.Println("  delete <id>                         Delete a form")
	fmt.Println("  theme <id> --mode light|dark|colorful")
	fmt.Println("")
	fmt.Println("Responses:")
	fmt.Println("  view <id>                           Show the fillable fields and count a view")
	fmt.Println("  submit <id> key=value...            Validate and submit a response")
	fmt.Println("  responses <id>                      List responses")
	fmt.Println("  stats <id>                          Show view and completion figures")
	fmt.Println("  export <id>                         Archive the form and responses to S3")
}
