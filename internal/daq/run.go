package daq

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dune-daq/daqgen/internal/fhicl"
)

// Document roles.
const (
	RoleBoardReader  = "boardreader"
	RoleEventBuilder = "eventbuilder"
	RoleAggregator   = "aggregator"
)

// Document is one rendered file of a plan.
type Document struct {
	// Name is the output file name, e.g. "eventbuilder_00.fcl".
	Name string
	Role string
	Text string
}

// RenderPlan renders every document of plan: one per board reader, event
// builder and aggregator, in that order. Documents render concurrently;
// any failure cancels the rest and no documents are returned.
func (g *Generator) RenderPlan(ctx context.Context, plan *Plan) ([]Document, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	// One seed per board, drawn in board order before any render starts.
	seeds := make([]*int, len(plan.Boards))
	for i := range plan.Boards {
		if g.random != nil {
			seed := g.random.Intn(fhicl.SeedBound)
			seeds[i] = &seed
		}
	}

	var wfviewer string
	if plan.Onmon {
		var err error
		wfviewer, err = g.WFViewer(WFViewerParams{
			TotalFRs:          len(plan.Boards),
			FragmentsPerBoard: plan.FragmentsPerBoard,
			FragmentIDs:       plan.FragmentIDs(),
			FragmentTypes:     plan.FragmentTypes(),
			Prescale:          plan.WFViewer.Prescale,
			DigitalSumOnly:    plan.WFViewer.DigitalSumOnly,
		})
		if err != nil {
			return nil, err
		}
	}

	totalFRs := len(plan.Boards)
	docs := make([]Document, totalFRs+plan.EventBuilders+plan.Aggregators)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())

	for i, b := range plan.Boards {
		i, b := i, b
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			code, err := g.Board(b.Kind, BoardParams{
				FragmentID:    i,
				BoardID:       b.BoardID,
				FragmentType:  b.FragmentType,
				RandomSeed:    seeds[i],
				ThrottleUsecs: b.ThrottleUsecs,
				NADCCounts:    b.NADCCounts,
				InterfaceType: b.InterfaceType,
			})
			if err != nil {
				return fmt.Errorf("board %d (%s %d): %w", i, b.Kind, b.BoardID, err)
			}
			text, err := g.BoardReader(plan.FragmentSizeWords, code)
			if err != nil {
				return err
			}
			docs[i] = Document{Name: b.Kind.DocumentName(b.BoardID), Role: RoleBoardReader, Text: text}
			return nil
		})
	}

	for i := 0; i < plan.EventBuilders; i++ {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := g.EventBuilder(EventBuilderParams{
				Index:              i,
				TotalFRs:           totalFRs,
				TotalEBs:           plan.EventBuilders,
				TotalAGs:           plan.Aggregators,
				DataDir:            plan.DataDir,
				OnmonEnabled:       plan.Onmon,
				TriggerEnabled:     plan.Trigger,
				DiskWritingEnabled: plan.DiskWriting,
				FragSizeWords:      plan.FragmentSizeWords,
				TotalFragments:     totalFRs * max(plan.FragmentsPerBoard, 1),
				BufferMultiplier:   plan.BufferMultiplier,
				FilePrefix:         plan.EventBuilderPrefix,
				WFViewer:           wfviewer,
			})
			if err != nil {
				return fmt.Errorf("event builder %d: %w", i, err)
			}
			docs[totalFRs+i] = Document{Name: fmt.Sprintf("eventbuilder_%02d.fcl", i), Role: RoleEventBuilder, Text: text}
			return nil
		})
	}

	for i := 0; i < plan.Aggregators; i++ {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, _, err := g.Aggregator(AggregatorParams{
				Index:               i,
				TotalAGs:            plan.Aggregators,
				TotalFRs:            totalFRs,
				TotalEBs:            plan.EventBuilders,
				BunchSize:           plan.BunchSize,
				DataDir:             plan.DataDir,
				OnmonEnabled:        plan.Onmon,
				DiskWritingEnabled:  plan.DiskWriting,
				FragSizeWords:       plan.FragmentSizeWords,
				XMLRPCClients:       plan.XMLRPCClients,
				FileSizeThresholdMB: plan.FileSizeThresholdMB,
				FileDurationSecs:    plan.FileDurationSecs,
				FileEventCount:      plan.FileEventCount,
				OnmonEventPrescale:  plan.OnmonEventPrescale,
				FilePrefix:          plan.AggregatorPrefix,
				WFViewer:            wfviewer,
			})
			if err != nil {
				return fmt.Errorf("aggregator %d: %w", i, err)
			}
			docs[totalFRs+plan.EventBuilders+i] = Document{Name: fmt.Sprintf("aggregator_%02d.fcl", i), Role: RoleAggregator, Text: text}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	g.logger.Info("rendered plan",
		slog.Int("documents", len(docs)),
		slog.Int("boards", totalFRs),
		slog.Int("event_builders", plan.EventBuilders),
		slog.Int("aggregators", plan.Aggregators),
		slog.Duration("elapsed", time.Since(start)))
	return docs, nil
}
