package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/riskibarqy/kleague-reconciler/internal/config"
	"github.com/riskibarqy/kleague-reconciler/internal/domain/discrepancy"
	"github.com/riskibarqy/kleague-reconciler/internal/usecase"
	"github.com/spf13/cobra"
)

func newRootCmd(out io.Writer) *cobra.Command {
	rt := &runtime{out: out}

	root := &cobra.Command{
		Use:   "kleague-reconcile",
		Short: "Reconcile K League player statistics across data sources",
		Long: `kleague-reconcile seeds the K League schedule, links every match to the
event source, folds match events into season totals and diffs those totals
against a curated reference table.

Configuration comes from the environment and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		rt.command("seed", "Fetch the season schedule and store it", creds(config.EnvDBURL, config.EnvTheSportsDBAPIKey), cobra.NoArgs, rt.seed),
		rt.command("resolve", "Link unresolved matches to the event source", creds(config.EnvDBURL, config.EnvHighlightlyAPIKey), cobra.NoArgs, rt.resolve),
		rt.command("aggregate", "Fold events of resolved, finished matches into season totals", creds(config.EnvDBURL, config.EnvHighlightlyAPIKey), cobra.NoArgs, rt.aggregate),
		rt.command("report", "Diff season totals against the reference file", creds(config.EnvDBURL, config.EnvReferenceFile), cobra.NoArgs, rt.report),
		rt.command("standings", "Compare standings goals with summed player goals", creds(config.EnvDBURL, config.EnvTheSportsDBAPIKey), cobra.NoArgs, rt.standings),
		rt.command("run", "Seed, resolve, aggregate, report and check standings", creds(config.EnvDBURL, config.EnvTheSportsDBAPIKey, config.EnvHighlightlyAPIKey), cobra.NoArgs, rt.run),
		rt.command("player <query>", "Search season totals by player name", creds(config.EnvDBURL), cobra.MinimumNArgs(1), rt.player),
	)
	return root
}

func creds(names ...string) string {
	return strings.Join(names, ",")
}

type commandFunc func(ctx context.Context, args []string) error

func (rt *runtime) command(use, short, credentials string, args cobra.PositionalArgs, fn commandFunc) *cobra.Command {
	return &cobra.Command{
		Use:         use,
		Short:       short,
		Args:        args,
		Annotations: map[string]string{credentialsAnnotation: credentials},
		RunE: func(cmd *cobra.Command, args []string) error {
			// setup may fail after telemetry started; teardown copes with a
			// partial runtime.
			defer rt.teardown(cmd)
			if err := rt.setup(cmd); err != nil {
				return err
			}
			return fn(cmd.Context(), args)
		},
	}
}

func (rt *runtime) seed(ctx context.Context, _ []string) error {
	for _, leagueID := range rt.leagues() {
		result, err := rt.container.Seeder.Seed(ctx, leagueID, rt.season())
		if err != nil {
			return err
		}
		if err := usecase.RenderSeedResult(rt.out, result); err != nil {
			return err
		}
	}
	return nil
}

func (rt *runtime) resolve(ctx context.Context, _ []string) error {
	return rt.runAll(ctx, usecase.RunOptions{Resolve: true})
}

func (rt *runtime) aggregate(ctx context.Context, _ []string) error {
	return rt.runAll(ctx, usecase.RunOptions{Aggregate: true})
}

func (rt *runtime) runAll(ctx context.Context, opts usecase.RunOptions) error {
	for _, leagueID := range rt.leagues() {
		summary, err := rt.container.Runner.Run(ctx, leagueID, rt.season(), opts)
		if err != nil {
			return err
		}
		if err := usecase.RenderRunSummary(rt.out, summary); err != nil {
			return err
		}
	}
	return nil
}

func (rt *runtime) report(ctx context.Context, _ []string) error {
	refs, err := rt.container.References.Load(ctx, rt.cfg.ReferenceFile)
	if err != nil {
		return err
	}

	for _, leagueID := range rt.leagues() {
		leagueRefs := discrepancy.ForLeague(refs, leagueID)
		if len(leagueRefs) == 0 {
			rt.logger.InfoContext(ctx, "no reference entries for league", "league_id", leagueID)
			continue
		}
		records, err := rt.container.Reporter.Report(ctx, leagueID, rt.season(), leagueRefs)
		if err != nil {
			return err
		}
		if err := usecase.RenderDiscrepancyReport(rt.out, leagueID, rt.season(), records, rt.container.Reporter.Tolerance()); err != nil {
			return err
		}
	}
	return nil
}

func (rt *runtime) standings(ctx context.Context, _ []string) error {
	for _, leagueID := range rt.leagues() {
		report, err := rt.container.StandingsCheck.Check(ctx, leagueID, rt.season())
		if err != nil {
			return err
		}
		if err := usecase.RenderSanityReport(rt.out, report); err != nil {
			return err
		}
	}
	return nil
}

// run chains every step. A standings fetch failure is reported but does not
// fail the run; the aggregated totals are already stored by then.
func (rt *runtime) run(ctx context.Context, args []string) error {
	if err := rt.seed(ctx, args); err != nil {
		return err
	}
	if err := rt.runAll(ctx, usecase.RunOptions{Resolve: true, Aggregate: true}); err != nil {
		return err
	}
	if rt.cfg.ReferenceFile != "" {
		if err := rt.report(ctx, args); err != nil {
			return err
		}
	}
	if err := rt.standings(ctx, args); err != nil {
		if !errors.Is(err, usecase.ErrRemoteUnavailable) {
			return err
		}
		rt.logger.WarnContext(ctx, "standings check skipped", "error", err)
	}
	return nil
}

func (rt *runtime) player(ctx context.Context, args []string) error {
	query := strings.Join(args, " ")
	for _, leagueID := range rt.leagues() {
		rows, err := rt.container.Reporter.FindPlayers(ctx, leagueID, rt.season(), query)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(rt.out, "League %s season %s, %d match(es) for %q\n", leagueID, rt.season(), len(rows), query); err != nil {
			return err
		}
		if err := usecase.RenderPlayers(rt.out, rows); err != nil {
			return err
		}
	}
	return nil
}
