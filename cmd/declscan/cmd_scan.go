package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dhamidi/declscan/codebase"
	"github.com/dhamidi/declscan/format"
	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	var timeout time.Duration
	var outputFormat string
	var cachePath string

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Scan a directory tree for declarations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(args[0], timeout, outputFormat, cachePath)
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "timeout per file")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "summary", "output format (summary, json)")
	cmd.Flags().StringVar(&cachePath, "cache", "", "path to a bbolt cache database recording each scanned file's content hash")

	return cmd
}

func runScan(root string, timeout time.Duration, outputFormat, cachePath string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	var opts []codebase.Option
	var cache *codebase.Cache
	if cachePath != "" {
		cache, err = codebase.OpenCache(cachePath, root)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		defer cache.Close()
		opts = append(opts, codebase.WithCache(cache))
	}

	cb := codebase.New(root, opts...)

	var files []string
	err = filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", root, err)
	}

	var failed []string
	for i, path := range files {
		fmt.Printf("[%d/%d] %s: ", i+1, len(files), path)
		if err := scanOneFile(cb, path, timeout); err != nil {
			fmt.Printf("ERROR %v\n", err)
			failed = append(failed, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		fmt.Println("OK")
	}
	cb.Graph().ResolveReferences()

	if outputFormat == "json" {
		return format.NewJSONEncoder(os.Stdout).Encode(cb.AllPackages())
	}

	fmt.Printf("\n=== SCAN COMPLETE ===\n")
	fmt.Printf("Files scanned: %d\n", len(files))
	fmt.Printf("Packages found: %d\n", len(cb.AllPackages()))
	fmt.Printf("Errors: %d\n", len(failed))
	for _, f := range failed {
		fmt.Printf("  - %s\n", f)
	}
	return nil
}

// scanOneFile bounds a single file's parse with timeout, matching the
// per-file deadline the old class/jar scanner enforced — a pathological
// input should never hang the whole tree scan.
func scanOneFile(cb *codebase.Codebase, path string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- cb.ScanFile(path)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("timeout after %s", timeout)
	}
}
