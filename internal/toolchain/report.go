package toolchain

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// TestStatus is the outcome of one test.
type TestStatus string

// Test outcomes.
const (
	TestPassed  TestStatus = "passed"
	TestFailed  TestStatus = "failed"
	TestSkipped TestStatus = "skipped"
)

// TestResult is the outcome of one test case.
type TestResult struct {
	Class    string
	Name     string
	Status   TestStatus
	Message  string
	Duration time.Duration
}

// ID returns "Class.Name".
func (r TestResult) ID() string {
	if r.Class == "" {
		return r.Name
	}
	return r.Class + "." + r.Name
}

// Summary aggregates the results of a test run.
type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
	Results []TestResult
}

// FailedTests returns the failed results in report order.
func (s *Summary) FailedTests() []TestResult {
	var out []TestResult
	for _, r := range s.Results {
		if r.Status == TestFailed {
			out = append(out, r)
		}
	}
	return out
}

func (s *Summary) add(r TestResult) {
	s.Results = append(s.Results, r)
	s.Total++
	switch r.Status {
	case TestPassed:
		s.Passed++
	case TestFailed:
		s.Failed++
	case TestSkipped:
		s.Skipped++
	}
}

type xmlSuite struct {
	XMLName xml.Name      `xml:"testsuite"`
	Name    string        `xml:"name,attr"`
	Cases   []xmlTestCase `xml:"testcase"`
}

type xmlTestCase struct {
	Name      string      `xml:"name,attr"`
	ClassName string      `xml:"classname,attr"`
	Time      string      `xml:"time,attr"`
	Failure   *xmlProblem `xml:"failure"`
	Error     *xmlProblem `xml:"error"`
	Skipped   *xmlProblem `xml:"skipped"`
}

type xmlProblem struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

// ReadReports parses every TEST-*.xml file in dir, in name order. A
// directory without reports yields an empty summary.
func ReadReports(dir string) (*Summary, error) {
	files, err := filepath.Glob(filepath.Join(dir, "TEST-*.xml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	summary := &Summary{}
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open test report: %w", err)
		}
		var suite xmlSuite
		err = xml.NewDecoder(f).Decode(&suite)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("decode test report %s: %w", filepath.Base(file), err)
		}
		for _, tc := range suite.Cases {
			summary.add(toResult(tc))
		}
	}
	return summary, nil
}

func toResult(tc xmlTestCase) TestResult {
	r := TestResult{Class: tc.ClassName, Name: tc.Name, Status: TestPassed}
	if secs, err := strconv.ParseFloat(tc.Time, 64); err == nil {
		r.Duration = time.Duration(secs * float64(time.Second))
	}
	switch {
	case tc.Failure != nil:
		r.Status, r.Message = TestFailed, tc.Failure.Message
	case tc.Error != nil:
		r.Status, r.Message = TestFailed, tc.Error.Message
	case tc.Skipped != nil:
		r.Status, r.Message = TestSkipped, tc.Skipped.Message
	}
	return r
}
