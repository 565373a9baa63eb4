// Package main is the openspacectl CLI: a small harness for running named
// open-space planning scenarios and reporting pass/fail and timing.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"go.opencab.dev/openspace/hybridastar"
)

func main() {
	var logger *zap.SugaredLogger

	app := &cli.App{
		Name:  "openspacectl",
		Usage: "run open-space motion-planning scenarios",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				devLogger, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				logger = devLogger.Sugar()
			} else {
				logger = zap.NewNop().Sugar()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "scenarios",
				Usage: "list the available seed scenarios",
				Action: func(c *cli.Context) error {
					for _, s := range seedScenarios() {
						fmt.Fprintf(c.App.Writer, "%s: %s\n", s.name, s.description)
					}
					return nil
				},
			},
			{
				Name:      "run",
				Usage:     "run a named scenario, or all of them if none is given",
				ArgsUsage: "[scenario-name]",
				Action: func(c *cli.Context) error {
					return runScenarios(c, logger, c.Args().First())
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type scenario struct {
	name        string
	description string
	req         hybridastar.Request
	wantErr     hybridastar.ErrorKind
	expectOK    bool
	timeout     time.Duration
}

func seedScenarios() []scenario {
	vehicle := hybridastar.VehicleParams{
		WheelBase:     2.85,
		MaxSteerAngle: 0.5,
		FrontEdge:     3.7,
		BackEdge:      1.0,
		LeftEdge:      1.0,
		RightEdge:     1.0,
	}
	bounds := hybridastar.XYBounds{XMin: -50, XMax: 50, YMin: -50, YMax: 50}
	cfg := hybridastar.Config{
		NextNodeNum:        10,
		StepSize:           0.5,
		XYGridResolution:   1.0,
		PhiGridResolution:  math.Pi / 12,
		BackPenalty:        5,
		GearSwitchPenalty:  10,
		SteerPenalty:       0.5,
		SteerChangePenalty: 0.5,
		DeltaT:             0.1,
		MaxIterations:      200000,
	}

	base := func(start, goal hybridastar.Pose, obstacles []hybridastar.ObstacleBox) hybridastar.Request {
		return hybridastar.Request{
			Start:     start,
			Goal:      goal,
			Vehicle:   vehicle,
			Bounds:    bounds,
			Obstacles: obstacles,
			Config:    cfg,
		}
	}

	return []scenario{
		{
			name:        "straight-through",
			description: "no obstacles, goal directly ahead",
			req:         base(hybridastar.NewPose(0, 0, 0), hybridastar.NewPose(10, 0, 0), nil),
			expectOK:    true,
		},
		{
			name:        "parallel-parking",
			description: "goal beside the start, forces a gear reversal",
			req:         base(hybridastar.NewPose(0, 3, 0), hybridastar.NewPose(0, 0, 0), nil),
			expectOK:    true,
		},
		{
			name:        "obstructed-straight",
			description: "small obstacle on the direct route",
			req: base(hybridastar.NewPose(0, 0, 0), hybridastar.NewPose(10, 0, 0), []hybridastar.ObstacleBox{
				{Center: hybridastar.NewPose(5, 0, 0), Length: 1, Width: 1},
			}),
			expectOK: true,
		},
		{
			name:        "infeasible",
			description: "obstacle spans the full width of the planning envelope",
			req: base(hybridastar.NewPose(0, 0, 0), hybridastar.NewPose(10, 0, 0), []hybridastar.ObstacleBox{
				{Center: hybridastar.NewPose(5, 0, 0), Length: 1, Width: 200},
			}),
			wantErr: hybridastar.ErrSearchExhausted,
		},
		{
			name:        "start-in-collision",
			description: "start pose sits inside an obstacle",
			req: base(hybridastar.NewPose(0, 0, 0), hybridastar.NewPose(10, 0, 0), []hybridastar.ObstacleBox{
				{Center: hybridastar.NewPose(0, 0, 0), Length: 2, Width: 2},
			}),
			wantErr: hybridastar.ErrStartCollision,
		},
		{
			name: "cancellation",
			description: "context cancelled almost immediately on a slow problem",
			req: base(hybridastar.NewPose(0, 0, 0), hybridastar.NewPose(10, 0, 0), []hybridastar.ObstacleBox{
				{Center: hybridastar.NewPose(5, 0, 0), Length: 1, Width: 200},
			}),
			wantErr: hybridastar.ErrCancelled,
			timeout: time.Millisecond,
		},
	}
}

func runScenarios(c *cli.Context, logger *zap.SugaredLogger, only string) error {
	planner := hybridastar.NewPlanner(logger)
	var combined error

	for _, s := range seedScenarios() {
		if only != "" && s.name != only {
			continue
		}

		ctx := context.Background()
		var cancel context.CancelFunc
		if s.timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
		}

		start := time.Now()
		result, err := planner.Plan(ctx, s.req)
		elapsed := time.Since(start)
		if cancel != nil {
			cancel()
		}

		status := "ok"
		if s.expectOK {
			if err != nil {
				status = fmt.Sprintf("FAIL (unexpected error: %v)", err)
				combined = multierr.Append(combined, fmt.Errorf("%s: unexpected error: %w", s.name, err))
			} else {
				status = fmt.Sprintf("ok (%d segments)", len(result.Segments))
			}
		} else {
			planErr, ok := err.(*hybridastar.PlanError)
			switch {
			case err == nil:
				status = "FAIL (expected an error, got none)"
				combined = multierr.Append(combined, fmt.Errorf("%s: expected an error, got none", s.name))
			case !ok:
				status = fmt.Sprintf("FAIL (non-PlanError: %v)", err)
				combined = multierr.Append(combined, fmt.Errorf("%s: non-PlanError: %w", s.name, err))
			case planErr.Kind != s.wantErr:
				status = fmt.Sprintf("FAIL (got %s, want %s)", planErr.Kind, s.wantErr)
				combined = multierr.Append(combined, fmt.Errorf("%s: got %s, want %s", s.name, planErr.Kind, s.wantErr))
			default:
				status = fmt.Sprintf("ok (%s)", planErr.Kind)
			}
		}

		fmt.Fprintf(c.App.Writer, "%-22s %-40s %v\n", s.name, status, elapsed)
	}

	return combined
}
