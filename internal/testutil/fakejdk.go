package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/vk/jarsmith/internal/toolchain"
)

// Markers recognized in Java sources by FakeJDK.
const (
	// CompileErrorMarker makes the fake compiler reject a source file.
	CompileErrorMarker = "COMPILE_ERROR"
	// TestFailureMarker makes the fake launcher report the test class failed.
	TestFailureMarker = "FAIL"
)

// FakeJDK stands in for javac and the JUnit console launcher.
//
// The compiler "compiles" each source by writing its content, prefixed with
// "compiled:", to the matching .class path under -d. The launcher reports
// one test case per *Test.class file under --scan-class-path; a class whose
// content contains TestFailureMarker fails.
type FakeJDK struct {
	mu       sync.Mutex
	commands []toolchain.Command
}

// Commands returns every invocation so far.
func (j *FakeJDK) Commands() []toolchain.Command {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]toolchain.Command(nil), j.commands...)
}

// Invoked reports how many times the named tool ran.
func (j *FakeJDK) Invoked(tool string) int {
	n := 0
	for _, c := range j.Commands() {
		if filepath.Base(c.Path) == tool {
			n++
		}
	}
	return n
}

// Run implements toolchain.Runner.
func (j *FakeJDK) Run(ctx context.Context, cmd toolchain.Command) (*toolchain.Result, error) {
	j.mu.Lock()
	j.commands = append(j.commands, cmd)
	j.mu.Unlock()

	switch filepath.Base(cmd.Path) {
	case "javac":
		return compile(cmd.Args)
	case "java":
		return launch(cmd.Args)
	default:
		return nil, fmt.Errorf("fake jdk: unknown tool %s", cmd.Path)
	}
}

func flagValue(args []string, name string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == name {
			return args[i+1]
		}
	}
	return ""
}

func compile(args []string) (*toolchain.Result, error) {
	out := flagValue(args, "-d")
	if out == "" {
		return &toolchain.Result{ExitCode: 2, Stderr: []byte("error: no -d")}, nil
	}
	for _, arg := range args {
		if !strings.HasSuffix(arg, ".java") {
			continue
		}
		src, err := os.ReadFile(arg)
		if err != nil {
			return nil, err
		}
		if strings.Contains(string(src), CompileErrorMarker) {
			msg := fmt.Sprintf("%s:1: error: cannot find symbol\n1 error", filepath.Base(arg))
			return &toolchain.Result{ExitCode: 1, Stderr: []byte(msg)}, nil
		}
		rel := arg
		if i := strings.LastIndex(filepath.ToSlash(arg), "/java/"); i >= 0 {
			rel = arg[i+len("/java/"):]
		}
		class := filepath.Join(out, strings.TrimSuffix(rel, ".java")+".class")
		if err := os.MkdirAll(filepath.Dir(class), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(class, append([]byte("compiled:"), src...), 0o644); err != nil {
			return nil, err
		}
	}
	return &toolchain.Result{}, nil
}

func launch(args []string) (*toolchain.Result, error) {
	scan := flagValue(args, "--scan-class-path")
	reports := flagValue(args, "--reports-dir")

	var classes []string
	err := filepath.WalkDir(scan, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, "Test.class") {
			classes = append(classes, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(classes)

	var b strings.Builder
	failed := 0
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, "<testsuite name=\"JUnit Jupiter\" tests=\"%d\">\n", len(classes))
	for _, path := range classes {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		rel, _ := filepath.Rel(scan, path)
		class := strings.ReplaceAll(strings.TrimSuffix(filepath.ToSlash(rel), ".class"), "/", ".")
		fmt.Fprintf(&b, "<testcase name=\"works()\" classname=\"%s\" time=\"0.01\">", class)
		if strings.Contains(string(content), TestFailureMarker) {
			failed++
			b.WriteString(`<failure message="expected: &lt;true&gt; but was: &lt;false&gt;" type="org.opentest4j.AssertionFailedError"/>`)
		}
		b.WriteString("</testcase>\n")
	}
	b.WriteString("</testsuite>\n")

	if err := os.WriteFile(filepath.Join(reports, "TEST-junit-jupiter.xml"), []byte(b.String()), 0o644); err != nil {
		return nil, err
	}
	if failed > 0 {
		return &toolchain.Result{ExitCode: 1, Stdout: []byte(fmt.Sprintf("%d tests failed", failed))}, nil
	}
	return &toolchain.Result{}, nil
}
