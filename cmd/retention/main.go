// Command retention runs one Retention Service (C6) sweep and exits: by
// default delete_old against jobs past RETENTION_MAX_AGE_HOURS, or
// delete_specific when -job is given.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rakshabesafe/ppttovideo/internal/app"
	"github.com/rakshabesafe/ppttovideo/internal/platform/config"
	"github.com/rakshabesafe/ppttovideo/internal/retention"
)

type idList []uint64

func (l *idList) String() string { return fmt.Sprintf("%v", []uint64(*l)) }
func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid -job value %q: %w", v, err)
	}
	*l = append(*l, n)
	return nil
}

func main() {
	var jobs idList
	var dryRun bool
	var maxAgeHours int
	var configPath string
	var staleRunningHours int
	var skipReclaim bool
	flag.Var(&jobs, "job", "job id to delete (repeatable); when set, runs delete_specific instead of delete_old")
	flag.BoolVar(&dryRun, "dry-run", false, "preview candidates without deleting")
	flag.IntVar(&maxAgeHours, "max-age-hours", config.Int("RETENTION_MAX_AGE_HOURS", 168), "age threshold for delete_old")
	flag.StringVar(&configPath, "config", "", "optional YAML file overriding max-age-hours and status-filter")
	flag.IntVar(&staleRunningHours, "stale-running-hours", config.Int("RETENTION_STALE_RUNNING_HOURS", 2), "age threshold for reclaiming tasks stuck in running")
	flag.BoolVar(&skipReclaim, "skip-reclaim", false, "skip the stale-running task reclaim pass")
	flag.Parse()

	var statusFilter []string
	if rf, err := config.LoadRetentionFile(configPath); err != nil {
		fmt.Printf("load config %s: %v\n", configPath, err)
		os.Exit(1)
	} else if rf != nil {
		if rf.MaxAgeHours > 0 {
			maxAgeHours = rf.MaxAgeHours
		}
		statusFilter = rf.StatusFilter
	}

	ctx := context.Background()
	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	svc := retention.New(a.Jobs, a.Tasks, a.Report, a.Store, a.Log)

	if !skipReclaim && !dryRun {
		reclaimed, err := svc.ReclaimStale(ctx, time.Duration(staleRunningHours)*time.Hour)
		if err != nil {
			fmt.Printf("reclaim stale running tasks failed: %v\n", err)
			os.Exit(1)
		}
		if len(reclaimed) > 0 {
			fmt.Printf("reclaimed %d stale running task(s)\n", len(reclaimed))
		}
	}

	if len(jobs) > 0 {
		if dryRun {
			fmt.Printf("[dry-run] would delete_specific job_ids=%v\n", []uint64(jobs))
			return
		}
		results, err := svc.DeleteSpecific(ctx, jobs)
		if err != nil {
			fmt.Printf("delete_specific failed: %v\n", err)
			os.Exit(1)
		}
		report(results)
		return
	}

	cutoff := time.Now().Add(-time.Duration(maxAgeHours) * time.Hour)
	if dryRun {
		candidates, err := svc.Preview(ctx, cutoff, statusFilter)
		if err != nil {
			fmt.Printf("preview failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("[dry-run] %d candidate job(s) older than %s\n", len(candidates), cutoff.Format(time.RFC3339))
		for _, j := range candidates {
			fmt.Printf("  job_id=%d status=%s created_at=%s\n", j.ID, j.Status, j.CreatedAt.Format(time.RFC3339))
		}
		return
	}

	results, err := svc.DeleteOld(ctx, cutoff, statusFilter)
	if err != nil {
		fmt.Printf("delete_old failed: %v\n", err)
		os.Exit(1)
	}
	report(results)
}

func report(results []retention.Candidate) {
	deleted := 0
	for _, c := range results {
		if c.DeletedRow {
			deleted++
		}
		for _, oerr := range c.ObjectErrors {
			fmt.Printf("job_id=%d object error: %v\n", c.Job.ID, oerr)
		}
	}
	fmt.Printf("done; swept=%d deleted=%d\n", len(results), deleted)
}
