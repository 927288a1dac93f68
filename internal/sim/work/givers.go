package work

import "colonysim.ai/internal/sim/tasks"

// ConstructionGiver offers build work at sites with remaining work and a free
// crew slot. Sites are approached from an adjacent tile, so the assigner
// skips center reachability for this category.
type ConstructionGiver struct{}

func (ConstructionGiver) Category() tasks.Category { return tasks.CategoryConstruction }

func (ConstructionGiver) Scan(ctx *Context) []Candidate {
	var out []Candidate
	prio := ctx.Priority(tasks.CategoryConstruction)
	for _, s := range ctx.Env.Sites() {
		if s.WorkLeft <= 0 || s.CrewSize >= s.CrewCap {
			continue
		}
		out = append(out, Candidate{
			Category: tasks.CategoryConstruction,
			Kind:     tasks.KindBuild,
			Target:   tasks.TargetRef{Kind: tasks.TargetBuilding, ID: s.ID, Pos: s.Pos},
			Distance: ctx.distanceTo(s.Pos),
			Priority: prio,
			Payload:  tasks.BuildPayload{SiteID: s.ID},
		})
	}
	return out
}

// RepairGiver offers repair work on damaged completed buildings.
type RepairGiver struct{}

func (RepairGiver) Category() tasks.Category { return tasks.CategoryRepair }

func (RepairGiver) Scan(ctx *Context) []Candidate {
	var out []Candidate
	prio := ctx.Priority(tasks.CategoryRepair)
	for _, b := range ctx.Env.Buildings() {
		if !b.Damaged {
			continue
		}
		out = append(out, Candidate{
			Category: tasks.CategoryRepair,
			Kind:     tasks.KindRepair,
			Target:   tasks.TargetRef{Kind: tasks.TargetBuilding, ID: b.ID, Pos: b.Pos},
			Distance: ctx.distanceTo(b.Pos),
			Priority: prio,
		})
	}
	return out
}

// HarvestGiver offers gathering of grown food resources.
type HarvestGiver struct{}

func (HarvestGiver) Category() tasks.Category { return tasks.CategoryHarvest }

func (HarvestGiver) Scan(ctx *Context) []Candidate {
	var out []Candidate
	prio := ctx.Priority(tasks.CategoryHarvest)
	for _, r := range ctx.Env.Resources() {
		if r.Kind != ResourceBerries || r.Amount <= 0 || !ctx.claimable(r) {
			continue
		}
		out = append(out, Candidate{
			Category: tasks.CategoryHarvest,
			Kind:     tasks.KindHarvest,
			Target:   tasks.TargetRef{Kind: tasks.TargetResource, ID: r.ID, Pos: r.Pos},
			Distance: ctx.distanceTo(r.Pos),
			Priority: prio,
		})
	}
	return out
}

// PlantCutGiver offers felling of trees designated for cutting.
type PlantCutGiver struct{}

func (PlantCutGiver) Category() tasks.Category { return tasks.CategoryPlantCut }

func (PlantCutGiver) Scan(ctx *Context) []Candidate {
	var out []Candidate
	prio := ctx.Priority(tasks.CategoryPlantCut)
	for _, r := range ctx.Env.Resources() {
		if r.Kind != ResourceTree || !r.Marked || r.Amount <= 0 || !ctx.claimable(r) {
			continue
		}
		out = append(out, Candidate{
			Category: tasks.CategoryPlantCut,
			Kind:     tasks.KindCutPlant,
			Target:   tasks.TargetRef{Kind: tasks.TargetResource, ID: r.ID, Pos: r.Pos},
			Distance: ctx.distanceTo(r.Pos),
			Priority: prio,
		})
	}
	return out
}

// HaulGiver offers moving loose items to their stockpile destination.
type HaulGiver struct{}

func (HaulGiver) Category() tasks.Category { return tasks.CategoryHaul }

func (HaulGiver) Scan(ctx *Context) []Candidate {
	var out []Candidate
	prio := ctx.Priority(tasks.CategoryHaul)
	for _, r := range ctx.Env.Resources() {
		if r.Kind != ResourceItem || r.DestID == "" || !ctx.claimable(r) {
			continue
		}
		out = append(out, Candidate{
			Category: tasks.CategoryHaul,
			Kind:     tasks.KindHaul,
			Target:   tasks.TargetRef{Kind: tasks.TargetResource, ID: r.ID, Pos: r.Pos},
			Distance: ctx.distanceTo(r.Pos),
			Priority: prio,
			Payload:  tasks.HaulPayload{ItemID: r.ID, DestID: r.DestID},
		})
	}
	return out
}

// MineGiver offers extraction of designated rock and ore.
type MineGiver struct{}

func (MineGiver) Category() tasks.Category { return tasks.CategoryMine }

func (MineGiver) Scan(ctx *Context) []Candidate {
	var out []Candidate
	prio := ctx.Priority(tasks.CategoryMine)
	for _, r := range ctx.Env.Resources() {
		if r.Kind != ResourceRock && r.Kind != ResourceOre {
			continue
		}
		if !r.Marked || r.Amount <= 0 || !ctx.claimable(r) {
			continue
		}
		out = append(out, Candidate{
			Category: tasks.CategoryMine,
			Kind:     tasks.KindMine,
			Target:   tasks.TargetRef{Kind: tasks.TargetResource, ID: r.ID, Pos: r.Pos},
			Distance: ctx.distanceTo(r.Pos),
			Priority: prio,
		})
	}
	return out
}

// MedicalGiver offers tending of downed agents. Urgency grows as the patient
// weakens: the configured priority is used as-is, but candidates are emitted
// per patient so distance ordering favors the nearest.
type MedicalGiver struct{}

func (MedicalGiver) Category() tasks.Category { return tasks.CategoryMedical }

func (MedicalGiver) Scan(ctx *Context) []Candidate {
	var out []Candidate
	prio := ctx.Priority(tasks.CategoryMedical)
	for _, a := range ctx.Env.Agents() {
		if a.ID == ctx.Agent.ID || !a.Downed {
			continue
		}
		out = append(out, Candidate{
			Category: tasks.CategoryMedical,
			Kind:     tasks.KindTend,
			Target:   tasks.TargetRef{Kind: tasks.TargetAgent, ID: a.ID, Pos: a.Pos},
			Distance: ctx.distanceTo(a.Pos),
			Priority: prio,
			Payload:  tasks.TendPayload{PatientID: a.ID},
		})
	}
	return out
}

// ResearchGiver offers bench work at completed research benches with a free
// occupancy slot.
type ResearchGiver struct{}

func (ResearchGiver) Category() tasks.Category { return tasks.CategoryResearch }

func (ResearchGiver) Scan(ctx *Context) []Candidate {
	var out []Candidate
	prio := ctx.Priority(tasks.CategoryResearch)
	for _, b := range ctx.Env.Buildings() {
		if b.Kind != BuildingBench {
			continue
		}
		if b.Occupants+b.PendingSleep >= b.Capacity {
			continue
		}
		out = append(out, Candidate{
			Category: tasks.CategoryResearch,
			Kind:     tasks.KindResearch,
			Target:   tasks.TargetRef{Kind: tasks.TargetBuilding, ID: b.ID, Pos: b.Pos},
			Distance: ctx.distanceTo(b.Pos),
			Priority: prio,
			Payload:  tasks.ResearchPayload{BenchID: b.ID},
		})
	}
	return out
}

// RestThreshold is the rest fraction below which an agent starts seeking a
// bed.
const RestThreshold = 0.3

// BedRestGiver offers sleep in a bed with free capacity once the agent is
// tired. The implied sleep reservation is acquired at commit time, not here.
type BedRestGiver struct{}

func (BedRestGiver) Category() tasks.Category { return tasks.CategoryRest }

func (BedRestGiver) Scan(ctx *Context) []Candidate {
	if ctx.Agent.Rest >= RestThreshold {
		return nil
	}
	var out []Candidate
	prio := ctx.Priority(tasks.CategoryRest)
	for _, b := range ctx.Env.Buildings() {
		if b.Kind != BuildingBed {
			continue
		}
		if b.Occupants+b.PendingSleep >= b.Capacity {
			continue
		}
		out = append(out, Candidate{
			Category: tasks.CategoryRest,
			Kind:     tasks.KindSleep,
			Target:   tasks.TargetRef{Kind: tasks.TargetBuilding, ID: b.ID, Pos: b.Pos},
			Distance: ctx.distanceTo(b.Pos),
			Priority: prio,
			Payload:  tasks.SleepPayload{BedID: b.ID},
		})
	}
	return out
}
