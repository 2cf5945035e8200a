// Package resolver turns INSDC accessions into run information with file
// links. Accessions are classified and mapped to runs through the ENA portal,
// then run information (ENA) and file links (NCBI) are fetched concurrently
// and joined by run accession.
package resolver

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/inconshreveable/log15"
	"golang.org/x/sync/errgroup"

	"github.com/nishad/ffqf/internal/accession"
	"github.com/nishad/ffqf/internal/config"
	"github.com/nishad/ffqf/internal/ena"
	"github.com/nishad/ffqf/internal/errors"
	"github.com/nishad/ffqf/internal/models"
	"github.com/nishad/ffqf/internal/ncbi"
	"github.com/nishad/ffqf/internal/request"
)

// ErrNoAccessions is returned when no input accession could be classified.
var ErrNoAccessions = errors.New("no accessions given")

// Runner performs requests against one data source.
type Runner interface {
	PerformRequests(ctx context.Context, requests []*request.Request) ([]*request.Response, error)
	Do(ctx context.Context, req *request.Request) (*request.Response, error)
}

// Resolver wires the adapters to the runners of their data sources.
type Resolver struct {
	Mappers   map[accession.Category]*ena.Mapper
	RunInfo   *ena.RunInformationAdapter
	FileLinks *ncbi.FileLinkAdapter
	ENA       Runner
	NCBI      Runner
	Logger    log15.Logger
}

// New creates a Resolver talking to the APIs configured in cfg. In strict
// mode accessions that cannot be mapped to runs fail the resolution.
func New(cfg *config.Config, strict bool, logger log15.Logger) (*Resolver, error) {
	enaRunner, err := request.NewRunner("ena", request.Options{
		BaseURL:           cfg.ENA.BaseURL,
		Timeout:           cfg.ENA.Timeout,
		Concurrency:       cfg.ENA.Concurrency,
		RequestsPerSecond: cfg.ENA.RequestsPerSecond,
	}, logger)
	if err != nil {
		return nil, err
	}

	ncbiRunner, err := request.NewRunner("ncbi", request.Options{
		BaseURL:           cfg.NCBI.BaseURL,
		Timeout:           cfg.NCBI.Timeout,
		Concurrency:       cfg.NCBI.Concurrency,
		RequestsPerSecond: cfg.NCBI.RequestsPerSecond,
		DefaultForm:       ncbi.DefaultForm(cfg.NCBI.Tool, cfg.NCBI.Email, cfg.NCBI.APIKey),
	}, logger)
	if err != nil {
		return nil, err
	}

	return &Resolver{
		Mappers:   ena.Mappers(strict, logger),
		RunInfo:   ena.NewRunInformationAdapter(cfg.ENA.Fields, strict, logger),
		FileLinks: ncbi.NewFileLinkAdapter(logger),
		ENA:       enaRunner,
		NCBI:      ncbiRunner,
		Logger:    logger,
	}, nil
}

// Resolve returns the run information of every run associated with the
// given accessions, in the order the ENA portal reports them. Accessions
// that cannot be classified are logged and skipped. Any failed request
// fails the whole resolution.
func (r *Resolver) Resolve(ctx context.Context, accessions []string) ([]*models.RunInformation, error) {
	logger := r.Logger.New("resolution", uuid.NewString())

	c := accession.Classify(accessions, logger)
	if c.Len() == 0 {
		return nil, ErrNoAccessions
	}

	runs, err := r.mapRuns(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	if runs.Len() == 0 {
		logger.Warn("No runs found for the given accessions.")
		return []*models.RunInformation{}, nil
	}

	logger.Info(fmt.Sprintf("Resolved %s accessions into %s runs.",
		humanize.Comma(int64(c.Len())), humanize.Comma(int64(runs.Len()))))

	return r.fetchRuns(ctx, runs)
}

type mapping struct {
	mapper *ena.Mapper
	set    *accession.Set
}

// mapRuns maps every non-empty category to runs in one batch and adds the
// runs that were given directly.
func (r *Resolver) mapRuns(ctx context.Context, c *accession.Classification,
	logger log15.Logger) (*accession.Set, error) {
	const op errors.Op = "resolver.mapRuns"

	var (
		pending  []mapping
		requests []*request.Request
	)

	for _, cat := range accession.Categories() {
		set := c.Set(cat)
		if cat == accession.Run || set.Len() == 0 {
			continue
		}

		m, ok := r.Mappers[cat]
		if !ok {
			return nil, errors.Errorf(op, errors.KindConfig, "no mapper for %s accessions", cat)
		}

		req, err := m.PrepareRequest(set)
		if err != nil {
			return nil, errors.Wrap(op, err)
		}

		pending = append(pending, mapping{mapper: m, set: set})
		requests = append(requests, req)
	}

	runs := accession.NewRunSet()
	if err := runs.Union(c.Set(accession.Run)); err != nil {
		return nil, errors.Wrap(op, err)
	}

	if len(requests) == 0 {
		return runs, nil
	}

	logger.Debug("mapping accessions to runs", "requests", len(requests))

	responses, err := r.ENA.PerformRequests(ctx, requests)
	if err != nil {
		return nil, errors.WrapMsg(op, "mapping accessions to runs", err)
	}

	for i, resp := range responses {
		mapped, err := pending[i].mapper.ParseRunSet(resp, pending[i].set)
		if err != nil {
			return nil, errors.Wrap(op, err)
		}
		if err := runs.Union(mapped); err != nil {
			return nil, errors.Wrap(op, err)
		}
	}

	return runs, nil
}

// fetchRuns requests run information and file links concurrently. The first
// failure cancels the other request.
func (r *Resolver) fetchRuns(ctx context.Context, runs *accession.Set) ([]*models.RunInformation, error) {
	const op errors.Op = "resolver.fetchRuns"

	infoReq, err := r.RunInfo.PrepareRequest(runs)
	if err != nil {
		return nil, errors.Wrap(op, err)
	}
	linkReq, err := r.FileLinks.PrepareRequest(runs)
	if err != nil {
		return nil, errors.Wrap(op, err)
	}

	var (
		infos []*models.RunInformation
		links map[string][]models.FileDescription
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		resp, err := r.ENA.Do(gctx, infoReq)
		if err != nil {
			return errors.WrapMsg(op, "fetching run information", err)
		}
		infos, err = r.RunInfo.ParseRunInformation(resp, runs)
		return err
	})

	g.Go(func() error {
		resp, err := r.NCBI.Do(gctx, linkReq)
		if err != nil {
			return errors.WrapMsg(op, "fetching file links", err)
		}
		links, err = r.FileLinks.ParseFileLinks(resp, runs)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Join(infos, links), nil
}

// Join attaches to each record the file links of its run. Records of runs
// without links get an empty list.
func Join(infos []*models.RunInformation, links map[string][]models.FileDescription) []*models.RunInformation {
	for _, info := range infos {
		files := links[info.RunAccession]
		if files == nil {
			files = []models.FileDescription{}
		}
		info.Files = files
	}
	return infos
}
