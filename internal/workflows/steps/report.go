package steps

import (
	"fmt"
	"os"

	"github.com/automa-saga/automa"
	"gopkg.in/yaml.v3"
)

// PrintWorkflowReport prints the workflow execution report in YAML format and
// saves a copy at reportPath when it is non-empty.
var PrintWorkflowReport = func(report *automa.Report, reportPath string) {
	b, err := yaml.Marshal(report)
	if err != nil {
		fmt.Printf("Failed to marshal report: %v\n", err)
		return
	}

	if reportPath != "" {
		if err := os.WriteFile(reportPath, b, 0644); err != nil {
			fmt.Printf("Failed to save report to %s: %v\n", reportPath, err)
		}
	}

	fmt.Printf("Workflow Execution Report:%s\n", b)
}
