package main

import (
	"io"

	"labadmin/internal/api"
	"labadmin/internal/crud"
	"labadmin/internal/journal"
	"labadmin/internal/notify"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// env is what every command needs to talk to the backend.
type env struct {
	client   *api.Client
	journal  *journal.Store // nil when disabled or unavailable
	gate     crud.Gate
	notifier crud.Notifier
	out      io.Writer
}

// newEnv wires the client, journal, confirmation gate and notice printer for
// a non-interactive command.
func newEnv(cmd *cobra.Command) *env {
	out := cmd.OutOrStdout()
	e := &env{
		client:   api.NewClient(cfg.Backend.BaseURL, cfg.GetBackendTimeout()),
		notifier: notify.NewPrinter(out, notify.DefaultStyles()),
		out:      out,
	}
	if assumeYes || !cfg.UI.ConfirmDeletes {
		e.gate = &notify.StaticGate{Answer: true}
	} else {
		e.gate = notify.NewPromptGate(cmd.InOrStdin(), cmd.ErrOrStderr(), notify.DefaultStyles())
	}
	e.journal = openJournal()
	return e
}

// openJournal opens the configured journal. A journal that cannot be opened
// is skipped with a warning so content edits still work.
func openJournal() *journal.Store {
	if !cfg.Journal.Enabled {
		return nil
	}
	store, err := journal.NewStore(cfg.Journal.DatabasePath)
	if err != nil {
		logger.Warn("journal unavailable", zap.String("path", cfg.Journal.DatabasePath), zap.Error(err))
		return nil
	}
	return store
}

func (e *env) Close() {
	if e.journal != nil {
		_ = e.journal.Close()
	}
}

// newController builds the controller for desc on top of e.
func newController[T crud.Record](e *env, desc crud.Descriptor) *crud.Controller[T] {
	var opts []crud.Option
	if e.journal != nil {
		opts = append(opts, crud.WithRecorder(e.journal))
	}
	return crud.NewController[T](desc, e.client, e.gate, e.notifier, opts...)
}
