// =============================================================================
// Production Sorter - Main Entry Point
// =============================================================================
//
// USAGE:
//   sorter process       - Convert exports into XLSX reports
//   sorter validate      - Check exports without writing reports
//   sorter version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Loading, aggregation and report writing
//   - pkg/           : File handling shared by the commands
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/production-sorter/cmd"
)

func main() {
	cmd.Execute()
}
