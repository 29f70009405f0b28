package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/focusbox/internal/config"
	"github.com/dgnsrekt/focusbox/internal/tasks"
	"github.com/dgnsrekt/focusbox/internal/timeline"
)

var planCmd = &cobra.Command{
	Use:     "plan [TASKS]",
	Short:   "Print the schedule of a task list without rendering it",
	Long:    paragraph(fmt.Sprintf("\n%s every announcement of the track with its offset in the minute, without calling the speech engine.", keyword("List"))),
	Example: paragraph("focusbox plan\nfocusbox plan tasks.yml --policy every-other"),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		list, err := tasks.Load(tasksArg(args))
		if err != nil {
			return err
		}
		outro, err := cfg.OutroSource().Build()
		if err != nil {
			return fmt.Errorf("unable to build cue: %w", err)
		}
		printPlan(os.Stdout, cfg, list, outro.Duration())
		return nil
	},
}

func printPlan(w io.Writer, cfg config.Config, list []tasks.Task, cue time.Duration) {
	kw, dim, head := keyword, faint, heading
	if !styled() {
		kw, dim, head = plain, plain, plain
	}

	steps := timeline.Plan(list, cfg.Policy(), cfg.Timing(), cfg.Speech.Language)
	for _, step := range steps {
		switch step.Kind {
		case timeline.StepIntro:
			fmt.Fprintf(w, "%s\n", head(fmt.Sprintf("%d. %s", step.TaskIndex+1, step.Task)))
			fmt.Fprintf(w, "   %-9s %q\n", dim("intro"), step.Events[0].Text)
		case timeline.StepMinute:
			label := fmt.Sprintf("minute %d", step.Minute+1)
			if len(step.Events) == 0 {
				fmt.Fprintf(w, "   %s\n", dim(label))
			}
			var countdown []string
			for _, ev := range step.Events {
				switch {
				case ev.Kind == timeline.KindCountdown:
					countdown = append(countdown, ev.Text)
				case ev.Anchor == timeline.AnchorTrackEnd:
					fmt.Fprintf(w, "   %-9s %5s %s %q\n", dim(label), "end", kw(ev.Kind.String()), ev.Text)
				default:
					fmt.Fprintf(w, "   %-9s %5s %s %q\n", dim(label), clock(ev.Offset), kw(ev.Kind.String()), ev.Text)
				}
			}
			if len(countdown) > 0 {
				start := cfg.Timing().CountdownStart
				fmt.Fprintf(w, "   %-9s %5s %s %s .. %s\n", dim(label), clock(start), kw("countdown"), countdown[0], countdown[len(countdown)-1])
			}
		case timeline.StepOutro:
			fmt.Fprintf(w, "   %-9s %s cue, %s silence\n\n", dim("outro"), cue, cfg.Timing().OutroGap)
		}
	}

	fixed := time.Duration(tasks.TotalMinutes(list))*time.Minute +
		time.Duration(len(list))*(cue+cfg.Timing().OutroGap)
	fmt.Fprintf(w, "%s %s plus %d spoken intros\n", head("Total:"), clock(fixed), len(list))
}
