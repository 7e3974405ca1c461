package demodata

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/pkg/logger"
)

var (
	firstNames = []string{"Aarav", "Priya", "Rohan", "Ananya", "Vikram", "Sara", "Kabir", "Meera", "Arjun", "Isha", "Dev", "Nisha"}
	lastNames  = []string{"Sharma", "Patel", "Iyer", "Khan", "Reddy", "Mehta", "Das", "Kapoor", "Nair", "Joshi"}
	sources    = []string{"Website", "Referral", "Facebook", "Google Ads", "Walk-in", "Property Portal", ""}
	callers    = []string{"Neha Verma", "Rahul Singh", "Pooja Gupta", "Amit Shah", "Kiran Rao"}
	reasons    = []string{"Site visit", "Price negotiation", "Document collection", "Loan discussion", ""}

	// Weighted stage draw: index into stages by cumulative weight.
	stages       = []model.Stage{model.StageNewLead, model.StageContacted, model.StageNegotiation, model.StageClosedWon, model.StageWon, model.StageClosedLost}
	stageWeights = []int{30, 25, 15, 10, 5, 15}

	priorities = []model.Priority{model.PriorityHot, model.PriorityWarm, model.PriorityCold}
)

// namespace makes lead ids stable for a seed.
var namespace = uuid.MustParse("6f1c0d9e-5a43-4f55-9f1a-3b6c2d7e8a10")

// Generate builds the lead book described by cfg. Leads are generated in
// parallel chunks; each lead draws from its own seeded source so the result
// does not depend on scheduling.
func Generate(ctx context.Context, cfg Config) ([]model.Lead, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	now := cfg.Now()

	logger.Get().Info(ctx, "generating demo leads",
		logger.Int("leads", cfg.Leads), logger.Int("seedDays", cfg.SeedDays))

	leads := make([]model.Lead, cfg.Leads)
	workers := min(cfg.Workers, max(cfg.Leads, 1))
	per := (cfg.Leads + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start, end := w*per, min((w+1)*per, cfg.Leads)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return fmt.Errorf("generate lead %d: %w", i, err)
				}
				leads[i] = generateLead(cfg, now, i)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return leads, nil
}

func generateLead(cfg Config, now time.Time, i int) model.Lead {
	r := rand.New(rand.NewPCG(cfg.Seed, uint64(i))) //nolint:gosec // demo data

	// Recent days are denser so the activity chart has a visible trend.
	ageDays := int(float64(cfg.SeedDays) * r.Float64() * r.Float64())
	created := now.Add(-time.Duration(ageDays)*24*time.Hour - time.Duration(r.IntN(int(24*time.Hour/time.Minute)))*time.Minute)
	if created.After(now) {
		created = now
	}

	l := model.Lead{
		ID:        uuid.NewSHA1(namespace, []byte(strconv.FormatUint(cfg.Seed, 10)+"/"+strconv.Itoa(i))).String(),
		CreatedAt: model.At(created),
		Stage:     pickStage(r),
		Source:    sources[r.IntN(len(sources))],
		Priority:  priorities[r.IntN(len(priorities))],
	}
	name := firstNames[r.IntN(len(firstNames))] + " " + lastNames[r.IntN(len(lastNames))]
	if r.IntN(4) == 0 {
		l.LeadName = name
	} else {
		l.Name = name
	}

	// One in six leads is unassigned.
	if r.IntN(6) != 0 {
		c := r.IntN(len(callers))
		l.AssignedCaller = json.RawMessage(strconv.Quote("caller-" + strconv.Itoa(c+1)))
		l.AssignedCallerName = callers[c]
	}

	if !l.Stage.IsTerminal() && r.IntN(3) == 0 {
		due := now.Add(time.Duration(r.IntN(7*24)) * time.Hour)
		if r.IntN(2) == 0 {
			l.NextFollowUpDate = model.At(due)
		} else {
			l.CallbackDateTime = model.At(due)
		}
		l.CallbackReason = reasons[r.IntN(len(reasons))]
	}
	if l.Stage == model.StageClosedLost {
		l.NotInterestedReason = "Budget mismatch"
	}
	return l
}

func pickStage(r *rand.Rand) model.Stage {
	total := 0
	for _, w := range stageWeights {
		total += w
	}
	n := r.IntN(total)
	for i, w := range stageWeights {
		if n < w {
			return stages[i]
		}
		n -= w
	}
	return model.StageNewLead
}
