package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"loom/internal/diag"
	"loom/internal/observ"
	"loom/internal/source"
	"loom/internal/trace"
)

// Result collects every unit of one invocation.
type Result struct {
	Files *source.FileSet
	Units []*Unit
	// Bag merges the unit bags, sorted.
	Bag *diag.Bag
}

// Timing merges the unit reports.
func (r *Result) Timing() observ.Report {
	reports := make([]observ.Report, 0, len(r.Units))
	for _, u := range r.Units {
		reports = append(reports, u.Timing())
	}
	return observ.Merge(reports...)
}

// ListSources returns every *.py file under dir, sorted.
func ListSources(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if !d.IsDir() && strings.HasSuffix(path, ".py") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// CompileDir compiles every source file under dir.
func CompileDir(ctx context.Context, dir string, opts Options) (*Result, error) {
	files, err := ListSources(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	if opts.BaseDir == "" {
		opts.BaseDir = dir
	}
	return CompileFiles(ctx, files, opts)
}

// CompileFiles compiles each path as an independent unit. Files are loaded
// sequentially into one FileSet, then lowered in parallel. A failing file does
// not stop the others: the returned error aggregates every unit error in
// path order, and the Result is always usable.
func CompileFiles(ctx context.Context, paths []string, opts Options) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	span, ctx := trace.Start(ctx, trace.ScopeDriver, "compile")
	span.WithExtra("files", fmt.Sprint(len(paths)))
	defer span.End("")

	fileSet := source.NewFileSetWithBase(opts.BaseDir)
	res := &Result{Files: fileSet, Units: make([]*Unit, len(paths))}

	for i, path := range paths {
		u := newUnit(path, &opts)
		res.Units[i] = u
		loadErr := u.stage(ctx, PhaseLoad, &opts, func(context.Context) (string, error) {
			id, err := fileSet.Load(path)
			if err != nil {
				return "", err
			}
			u.File = id
			return "", nil
		})
		if loadErr != nil {
			u.Err = fmt.Errorf("load %s: %w", path, loadErr)
			u.Bag.Add(diag.New(diag.SevError, diag.IOLoadFileError, source.Location{Origin: path}, "failed to load file: "+loadErr.Error()))
		}
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))
	for _, u := range res.Units {
		if u.Err != nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// each unit owns its tables; the FileSet is only read from here on
			u.finish(gctx, fileSet, &opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	var errs *multierror.Error
	total := 0
	for _, u := range res.Units {
		total += u.Bag.Len()
		if u.Err != nil {
			errs = multierror.Append(errs, u.Err)
		}
	}
	res.Bag = diag.NewBag(max(total, 1))
	for _, u := range res.Units {
		res.Bag.Merge(u.Bag)
	}
	res.Bag.Sort()
	res.Bag.Dedup()
	if errs != nil {
		span.WithExtra("failed", fmt.Sprint(errs.Len()))
	}
	return res, errs.ErrorOrNil()
}
