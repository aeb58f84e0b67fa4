package engine

import (
	"bufio"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/Konsultn-Engineering/sqlgen/utils"
	"github.com/tevino/abool/v2"
	"golang.org/x/sync/errgroup"
)

// Report lists the outputs of one walk, relative to the output root.
type Report struct {
	Generated []string
	Skipped   []string
}

type walker struct {
	root, outRoot string
	opts          Options
	compiler      *Compiler
	failed        *abool.AtomicBool

	mu     sync.Mutex
	report Report
	errs   []error
}

// Walk generates code for every host file below root. The output of
// root/a/b/Users.sqlg is written to outRoot/a/b/users.sqlgen.go, in a
// package named after its directory. An output that is newer than its
// source, or that was generated from identical source, is left alone
// unless opts.Force is set.
//
// Files are compiled concurrently. A failing file does not stop the
// others; the returned error joins every failure.
func Walk(ctx context.Context, root, outRoot string, opts Options) (*Report, error) {
	if outRoot == "" {
		outRoot = root
	}
	sources, err := findSources(root)
	if err != nil {
		return nil, err
	}

	w := &walker{
		root:     root,
		outRoot:  outRoot,
		opts:     opts,
		compiler: opts.compiler(),
		failed:   abool.New(),
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	var g errgroup.Group
	g.SetLimit(jobs)
	for _, rel := range sources {
		if ctx.Err() != nil {
			break
		}
		if opts.FailFast && w.failed.IsSet() {
			break
		}
		g.Go(func() error {
			w.file(ctx, rel)
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		w.errs = append(w.errs, err)
	}
	sort.Strings(w.report.Generated)
	sort.Strings(w.report.Skipped)
	return &w.report, errors.Join(w.errs...)
}

func (w *walker) file(ctx context.Context, rel string) {
	if ctx.Err() != nil || (w.opts.FailFast && w.failed.IsSet()) {
		return
	}
	src := filepath.Join(w.root, rel)
	outRel := filepath.Join(filepath.Dir(rel), OutputName(rel))
	out := filepath.Join(w.outRoot, outRel)

	opts := w.opts
	if filepath.Dir(rel) != "." {
		opts.Package = ""
	}

	fresh, err := w.upToDate(src, out)
	if err == nil && fresh && !opts.Force {
		w.record(&w.report.Skipped, outRel)
		return
	}
	if err == nil {
		err = w.compiler.GenerateFile(src, out, opts)
	}
	if err != nil {
		w.failed.Set()
		w.mu.Lock()
		w.errs = append(w.errs, err)
		w.mu.Unlock()
		return
	}
	w.record(&w.report.Generated, outRel)
}

func (w *walker) record(list *[]string, path string) {
	w.mu.Lock()
	*list = append(*list, filepath.ToSlash(path))
	w.mu.Unlock()
}

// upToDate reports whether out needs no regeneration: it is newer than
// src, or its header records the hash of the current source.
func (w *walker) upToDate(src, out string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	outInfo, err := os.Stat(out)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if outInfo.ModTime().After(srcInfo.ModTime()) {
		return true, nil
	}

	recorded, err := headerHash(out)
	if err != nil || recorded == "" {
		return false, nil
	}
	current, err := utils.FileHash(src)
	if err != nil {
		return false, err
	}
	return recorded == current, nil
}

// headerHash returns the source hash recorded in a generated file.
func headerHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for i := 0; i < 4 && sc.Scan(); i++ {
		if hash, ok := strings.CutPrefix(sc.Text(), "// blake3: "); ok {
			return hash, nil
		}
	}
	return "", sc.Err()
}

// findSources returns the host files below root, relative to root and in
// lexical order. Directories starting with "." or "_" are skipped, like
// the go tool does.
func findSources(root string) ([]string, error) {
	var sources []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || strings.HasPrefix(d.Name(), "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != SourceExt {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		sources = append(sources, rel)
		return nil
	})
	return sources, err
}
