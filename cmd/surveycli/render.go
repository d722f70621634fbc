package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/aura-survey/backend/internal/flow"
	"github.com/aura-survey/backend/internal/summary"
)

func renderQuestion(w io.Writer, v *flow.QuestionView) {
	fmt.Fprintf(w, "\nQuestion %d of %d: %s\n", v.Position, v.Total, v.Question.Text)
	for i, r := range v.Results {
		marker := " "
		if v.Selected != nil && *v.Selected == r.OptionID {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %d) %-16s %d votes\n", marker, i+1, r.Text, r.Count)
	}
	if v.Selected != nil {
		switch {
		case v.Draft != nil:
			fmt.Fprintf(w, "Prediction (not sent): %s%%\n", summary.FormatPrediction(*v.Draft))
		case v.Prediction != nil:
			fmt.Fprintf(w, "Your prediction: %s%%\n", summary.FormatPrediction(*v.Prediction))
		}
	}
	if v.FeedbackVisible && v.Feedback != nil {
		fb := v.Feedback
		fmt.Fprintf(w, "Feedback: %d%% of %d respondents chose the same option; you predicted %d%% (off by %d)\n",
			fb.ActualPercent, fb.Total, fb.PredictedPercent, fb.Difference)
	}
}

func renderSummary(w io.Writer, entries []summary.Entry) {
	fmt.Fprintln(w, "\nSurvey summary")
	for _, e := range entries {
		fmt.Fprintf(w, "\n%s\n", e.Text)
		answer := "No answer"
		if e.YourAnswer != nil {
			answer = *e.YourAnswer
		}
		fmt.Fprintf(w, "  Your answer: %s\n", answer)
		if e.Prediction != nil {
			fmt.Fprintf(w, "  Your prediction: %s%%\n", summary.FormatPrediction(*e.Prediction))
		}
		fmt.Fprintln(w, "  Results:")
		for _, r := range e.Results {
			fmt.Fprintf(w, "    %-16s %d votes\n", r.Text, r.Count)
		}
	}
}

const takeHelp = `Commands:
  <n>          choose option n
  p <percent>  submit a prediction for your choice
  n            next question
  b            previous question
  s            show summary
  r            refresh counts
  q            quit`

func helpText() string { return strings.TrimSpace(takeHelp) }
