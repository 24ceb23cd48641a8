package cli

import (
	"fmt"
	"io"
	"log"

	"github.com/javanhut/archived/internal/colors"
	"github.com/javanhut/archived/internal/scenario"
	"github.com/sanity-io/litter"
)

// printReport writes one line per check in the harness format:
//
//	<label> First Value: <want>, Second Value: <got>. OK.
func printReport(w io.Writer, r *scenario.Report, dump bool) {
	header := fmt.Sprintf("Scenario %s", r.Name)
	if r.Digest != "" {
		header += " " + colors.Gray(fmt.Sprintf("(blake3 %s)", r.Digest[:min(16, len(r.Digest))]))
	}
	fmt.Fprintln(w, colors.SectionHeader(header))

	for _, c := range r.Checks {
		if settings.Log.Verbose {
			log.Printf("step %d: %s want=%d got=%d ok=%t", c.Step, c.Op, c.Want, c.Got, c.OK)
		}

		if c.Op == scenario.OpExpectInvalid {
			reason := c.Err
			if reason == "" {
				reason = "still valid"
			}
			fmt.Fprintf(w, "%s %s. %s\n", c.Describe(), colors.Dim(reason), colors.Result(c.OK))
			continue
		}

		fmt.Fprintf(w, "%s First Value: %d, Second Value: %d. ", c.Describe(), c.Want, c.Got)
		if c.Err != "" {
			fmt.Fprintf(w, "%s ", colors.WarningText(c.Err))
		}
		fmt.Fprintln(w, colors.Result(c.OK))
	}

	fmt.Fprintf(w, "Final value: %s\n", colors.InfoText(fmt.Sprint(r.Final)))
	if settings.Log.Verbose {
		log.Printf("chain: %d commits, generation %d, %d edges walked",
			r.Stats.Commits, r.Stats.Generation, r.Stats.Walked)
	}

	if dump {
		fmt.Fprintln(w, litter.Sdump(r))
	}
}

// checkReport turns failed checks into a command error so the exit status
// reflects the result.
func checkReport(r *scenario.Report) error {
	failed := r.Failures()
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d checks failed in scenario %s", len(failed), len(r.Checks), r.Name)
}
