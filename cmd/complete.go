package cmd

import (
	"github.com/etnz/commission/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the app.
func Completion() *complete.Command {
	topics := docs.Names()
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"ledger-file":   predict.Files("*.xlsx"),
			"inbox":         predict.Dirs("*"),
			"publish-dir":   predict.Dirs("*"),
			"currency":      predict.Set{"GBP", "EUR", "USD"},
			"postgres":      predict.Something,
			"kafka-brokers": predict.Something,
			"kafka-topic":   predict.Something,
			"mapping":       predict.Files("*.yaml"),
			"v":             predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"run": {
				Flags: map[string]complete.Predictor{
					"days":  predict.Something,
					"title": predict.Something,
					"notes": predict.Files("*.md"),
				},
			},
			"reconcile": {
				Flags: map[string]complete.Predictor{
					"kind": predict.Set{"statement", "report"},
				},
				Args: predict.Files("*"),
			},
			"summary": {
				Flags: map[string]complete.Predictor{
					"documents": predict.Nothing,
				},
			},
			"render": {
				Flags: map[string]complete.Predictor{
					"o":       predict.Files("*.html"),
					"publish": predict.Nothing,
					"title":   predict.Something,
					"notes":   predict.Files("*.md"),
				},
			},
			"serve": {
				Flags: map[string]complete.Predictor{
					"addr": predict.Something,
				},
			},
			"topic": {
				Flags: map[string]complete.Predictor{
					"list": predict.Nothing,
				},
				Args: predict.Set(append(topics, "*")),
			},
		},
	}
}
