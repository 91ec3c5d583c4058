// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package main

import (
	"github.com/fmoel/MindustryJsMicrocontroller/internal/world"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/world/memworld"
)

// newDemoWorld builds the map the mcu host runs scripts against: a
// processor linked to one block of each kind, a core, a few units and an
// ore field.
func newDemoWorld() *memworld.World {
	w := memworld.New()

	w.Link("message1", w.Add(memworld.Spec{Kind: world.KindMessage, Name: "message", X: 1}))
	w.Link("display1", w.Add(memworld.Spec{Kind: world.KindDisplay, Name: "logic-display", X: 3}))
	w.Link("cell1", w.Add(memworld.Spec{Kind: world.KindMemory, Name: "memory-cell", Y: 1}))
	w.Link("switch1", w.Add(memworld.Spec{Kind: world.KindSwitch, Name: "switch", Y: -1}))
	w.Link("duo1", w.Add(memworld.Spec{
		Kind:  world.KindTurret,
		Name:  "duo",
		X:     -2,
		Flags: []world.BlockFlag{world.FlagTurret},
	}))

	w.Add(memworld.Spec{
		Kind:   world.KindContainer,
		Name:   "core-shard",
		X:      12,
		Y:      8,
		Health: 1100,
		Flags:  []world.BlockFlag{world.FlagCore, world.FlagStorage},
		Items:  map[string]int{"copper": 300, "lead": 120},
	})

	w.AddUnit("flare", 4, 4)
	w.AddUnit("flare", 6, 2)
	w.AddUnit("mono", 10, 6)
	w.Add(memworld.Spec{Kind: world.KindUnit, Name: "dagger", X: 30, Y: 24, Health: 130, Enemy: true})

	w.AddOre("copper", 16, -6)
	w.AddOre("lead", -12, 9)
	w.SetSpawn(40, 40)
	return w
}
