package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/iconidentify/xclip/internal/domain"
	"github.com/iconidentify/xclip/internal/repository"
	"github.com/iconidentify/xclip/internal/service"
	"github.com/iconidentify/xclip/internal/worker"
)

const batchPollInterval = 200 * time.Millisecond

// batchResult is the JSON form of one resolved URL.
type batchResult struct {
	URL       string           `json:"url"`
	Status    domain.JobStatus `json:"status"`
	Attempts  int              `json:"attempts"`
	Plan      *domain.PlanView `json:"plan,omitempty"`
	ErrorCode string           `json:"error_code,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var flags resolveFlags
	var file string
	var quiet bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "batch [url...]",
		Short: "Resolve many post URLs concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := append([]string(nil), args...)
			if file != "" {
				fromFile, err := readURLFile(cmd, file)
				if err != nil {
					return err
				}
				urls = append(urls, fromFile...)
			}
			if len(urls) == 0 {
				return fmt.Errorf("no URLs given: pass them as arguments or with --file")
			}

			opts, err := flags.options()
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			svc, err := ctx.ensureResolver(cmd)
			if err != nil {
				return err
			}
			logger := ctx.logger(cmd)

			jobRepo := repository.NewInMemoryJobRepository()
			batchSvc := service.NewBatchService(jobRepo, cfg.Resolve, cfg.Worker, logger)
			summary, err := batchSvc.SubmitBatch(cmd.Context(), urls, opts)
			if err != nil {
				return err
			}

			pool := worker.NewPool(worker.Config{
				Workers:      cfg.Worker.Count,
				PollInterval: cfg.Worker.PollInterval,
			}, jobRepo, svc, logger)
			pool.Start()

			summary, waitErr := waitForBatch(cmd, batchSvc, summary, quiet)
			if err := pool.Stop(10 * time.Second); err != nil {
				logger.Warn("worker pool did not stop cleanly", "error", err)
			}
			if waitErr != nil {
				return waitErr
			}

			if asJSON {
				results := make([]batchResult, 0, len(summary.Jobs))
				for _, j := range summary.Jobs {
					results = append(results, batchResult{
						URL:       j.URL,
						Status:    j.Status,
						Attempts:  j.Attempts,
						Plan:      domain.NewPlanView(j.Plan),
						ErrorCode: j.ErrorCode,
						Error:     j.LastError,
					})
				}
				return writeJSON(cmd, results)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "URL", "Status", "Plan", "Result"},
				batchRows(summary.Jobs),
				[]columnAlignment{alignRight},
			))
			fmt.Fprintf(cmd.OutOrStdout(), "%d resolved, %d failed\n", summary.Completed, summary.Failed)
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d URLs failed", summary.Failed, summary.Total)
			}
			return nil
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVarP(&file, "file", "f", "", `Read URLs from a file, one per line ("-" for stdin)`)
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Hide the progress bar")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

// waitForBatch polls the batch until every job is terminal, driving a
// progress bar on stderr.
func waitForBatch(cmd *cobra.Command, batchSvc *service.BatchService, summary *domain.BatchSummary, quiet bool) (*domain.BatchSummary, error) {
	var bar *pb.ProgressBar
	if !quiet {
		tmpl := `{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }} {{etime . }}`
		bar = pb.ProgressBarTemplate(tmpl).New(summary.Total)
		bar.SetWriter(cmd.ErrOrStderr())
		bar.Set("prefix", "Resolving: ")
		bar.Start()
		defer bar.Finish()
	}

	ticker := time.NewTicker(batchPollInterval)
	defer ticker.Stop()

	for {
		if bar != nil {
			bar.SetCurrent(int64(summary.Completed + summary.Failed))
		}
		if summary.Done() {
			return summary, nil
		}

		select {
		case <-cmd.Context().Done():
			return summary, cmd.Context().Err()
		case <-ticker.C:
		}

		next, err := batchSvc.GetBatch(cmd.Context(), summary.BatchID)
		if err != nil {
			return summary, err
		}
		summary = next
	}
}

func batchRows(jobs []*domain.Job) [][]string {
	rows := make([][]string, 0, len(jobs))
	for i, j := range jobs {
		plan, result := "-", ""
		if j.Plan != nil {
			plan = string(j.Plan.Kind())
			result = planTarget(j.Plan)
		}
		if j.Status == domain.JobStatusFailed {
			result = fmt.Sprintf("%s: %s", j.ErrorCode, domain.CodeMessage(j.ErrorCode))
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), j.URL, string(j.Status), plan, result})
	}
	return rows
}

func planTarget(plan domain.DownloadPlan) string {
	switch p := plan.(type) {
	case *domain.ProxyPlan:
		return p.Filename
	case *domain.RemuxPlan:
		return p.Filename
	case *domain.PickerPlan:
		return fmt.Sprintf("%d items", len(p.Items))
	}
	return ""
}

func readURLFile(cmd *cobra.Command, path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open url file: %w", err)
		}
		defer f.Close()
		r = f
	}
	return readURLs(r)
}

// readURLs returns the non-empty lines of r, skipping # comments.
func readURLs(r io.Reader) ([]string, error) {
	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read urls: %w", err)
	}
	return urls, nil
}
