package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/leadsend/replytag/internal/classifier"
	"github.com/leadsend/replytag/internal/corpus"
	"github.com/leadsend/replytag/internal/label"
)

type labelScore struct {
	Label   label.Category
	Total   int
	Correct int
}

type evalReport struct {
	Labels  []labelScore
	ByStage map[classifier.Stage]int
	Misses  []evalMiss
	Total   int
	Correct int
}

type evalMiss struct {
	Index    int
	Text     string
	Want     label.Category
	Decision classifier.Decision
}

// evaluate classifies each corpus example against its own label
func evaluate(c *classifier.Classifier, corp corpus.Corpus) evalReport {
	scores := make(map[label.Category]*labelScore)
	rep := evalReport{ByStage: make(map[classifier.Stage]int)}

	for i, ex := range corp {
		d := c.Explain(ex.Text)
		rep.Total++
		rep.ByStage[d.Stage]++

		s, ok := scores[ex.Label]
		if !ok {
			s = &labelScore{Label: ex.Label}
			scores[ex.Label] = s
		}
		s.Total++
		if d.Label == ex.Label {
			s.Correct++
			rep.Correct++
			continue
		}
		rep.Misses = append(rep.Misses, evalMiss{Index: i, Text: ex.Text, Want: ex.Label, Decision: d})
	}

	for _, l := range label.All() {
		if s, ok := scores[l]; ok {
			rep.Labels = append(rep.Labels, *s)
		}
	}
	return rep
}

func (r evalReport) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

func (r evalReport) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tCORRECT\tTOTAL")
	for _, s := range r.Labels {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", s.Label, s.Correct, s.Total)
	}
	fmt.Fprintf(tw, "all\t%d\t%d\n", r.Correct, r.Total)
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\naccuracy %.2f\n", r.Accuracy())
	for _, st := range []classifier.Stage{
		classifier.StageRule, classifier.StageBayes, classifier.StageSimilarity, classifier.StageDefault,
	} {
		fmt.Fprintf(w, "  %-10s %d\n", st, r.ByStage[st])
	}

	if len(r.Misses) > 0 {
		fmt.Fprintln(w, "\nmisses:")
		for _, m := range r.Misses {
			fmt.Fprintf(w, "  #%d want %s, got %s: %q\n", m.Index, m.Want, m.Decision, m.Text)
		}
	}
	return nil
}
