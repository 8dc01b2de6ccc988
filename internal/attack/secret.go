package attack

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// name containing a secret-ish word, assigned a quoted literal
	assignedSecret = regexp.MustCompile(`(?i)([\w.]*(?:api_?key|secret|passw(?:or)?d|token)\w*)["']?\s*(?::=|=|:)\s*["'\x60]([^"'\x60\s]{6,})["'\x60]`)
	// credentials embedded in a URL
	urlCredentials = regexp.MustCompile(`[a-z][a-z0-9+.-]*://[^:/\s"'@]+:([^@/\s"']+)@`)
	// ALL_CAPS values are environment variable names or placeholders, not secrets
	envName = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
)

var (
	scannedExt = map[string]bool{
		".go": true, ".py": true, ".js": true, ".ts": true,
		".yaml": true, ".yml": true, ".json": true, ".toml": true, ".ini": true,
	}
	skippedDirs = map[string]bool{
		".git": true, "_examples": true, "vendor": true, "node_modules": true, "testdata": true,
	}
)

type Finding struct {
	File string
	Line int
	Name string
	// Masked shows only the first two characters of the value.
	Masked string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s:%d %s=%s", f.File, f.Line, f.Name, f.Masked)
}

// ScanSecrets walks root looking for literal secrets in source and config files.
// Test files are skipped.
func ScanSecrets(ctx context.Context, root string) ([]Finding, error) {
	var findings []Finding
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !scannedExt[filepath.Ext(p)] || strings.HasSuffix(p, "_test.go") {
			return nil
		}
		found, err := scanFile(p)
		if err != nil {
			return err
		}
		findings = append(findings, found...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("filepath.WalkDir: %w", err)
	}
	return findings, nil
}

func scanFile(p string) ([]Finding, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()

	var findings []Finding
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := sc.Text()
		for _, m := range assignedSecret.FindAllStringSubmatch(text, -1) {
			if envName.MatchString(m[2]) {
				continue
			}
			findings = append(findings, Finding{File: p, Line: line, Name: m[1], Masked: mask(m[2])})
		}
		for _, m := range urlCredentials.FindAllStringSubmatch(text, -1) {
			findings = append(findings, Finding{File: p, Line: line, Name: "url", Masked: mask(m[1])})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("sc.Scan: %w", err)
	}
	return findings, nil
}

func mask(s string) string {
	if len(s) <= 2 {
		return "***"
	}
	return s[:2] + "***"
}

// HardcodedSecret scans SourceDir. Defended when no literal secret is found.
func (a *Attacker) HardcodedSecret(ctx context.Context) (Outcome, error) {
	root := a.SourceDir
	if root == "" {
		root = "."
	}
	findings, err := ScanSecrets(ctx, root)
	if err != nil {
		return Outcome{}, err
	}

	detail := fmt.Sprintf("no literal secrets under %s", root)
	if len(findings) > 0 {
		var ss []string
		for _, f := range findings {
			ss = append(ss, f.String())
		}
		detail = fmt.Sprintf("%d literal secrets: %s", len(findings), strings.Join(ss, ", "))
	}
	return Outcome{
		Name:     "secret",
		Defended: len(findings) == 0,
		Detail:   detail,
	}, nil
}
