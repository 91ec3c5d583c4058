// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package world

// RadarTarget filters radar results.
type RadarTarget string

const (
	TargetAny      RadarTarget = "any"
	TargetEnemy    RadarTarget = "enemy"
	TargetAlly     RadarTarget = "ally"
	TargetPlayer   RadarTarget = "player"
	TargetAttacker RadarTarget = "attacker"
	TargetFlying   RadarTarget = "flying"
	TargetBoss     RadarTarget = "boss"
	TargetGround   RadarTarget = "ground"
)

// RadarTargets lists every RadarTarget in declaration order.
var RadarTargets = []RadarTarget{
	TargetAny, TargetEnemy, TargetAlly, TargetPlayer,
	TargetAttacker, TargetFlying, TargetBoss, TargetGround,
}

// RadarSort orders radar results.
type RadarSort string

const (
	SortDistance  RadarSort = "distance"
	SortHealth    RadarSort = "health"
	SortShield    RadarSort = "shield"
	SortArmor     RadarSort = "armor"
	SortMaxHealth RadarSort = "maxHealth"
)

var RadarSorts = []RadarSort{SortDistance, SortHealth, SortShield, SortArmor, SortMaxHealth}

// BlockFlag groups buildings for Locate.
type BlockFlag string

const (
	FlagCore          BlockFlag = "core"
	FlagStorage       BlockFlag = "storage"
	FlagGenerator     BlockFlag = "generator"
	FlagTurret        BlockFlag = "turret"
	FlagFactory       BlockFlag = "factory"
	FlagRepair        BlockFlag = "repair"
	FlagBattery       BlockFlag = "battery"
	FlagReactor       BlockFlag = "reactor"
	FlagExtinguisher  BlockFlag = "extinguisher"
	FlagDrill         BlockFlag = "drill"
	FlagShield        BlockFlag = "shield"
	FlagUnitAssembler BlockFlag = "unitAssembler"
)

var BlockFlags = []BlockFlag{
	FlagCore, FlagStorage, FlagGenerator, FlagTurret, FlagFactory, FlagRepair,
	FlagBattery, FlagReactor, FlagExtinguisher, FlagDrill, FlagShield, FlagUnitAssembler,
}

// UnitControl is a unit instruction.
type UnitControl string

const (
	UnitIdle         UnitControl = "idle"
	UnitStop         UnitControl = "stop"
	UnitMove         UnitControl = "move"
	UnitApproach     UnitControl = "approach"
	UnitPathfind     UnitControl = "pathfind"
	UnitAutoPathfind UnitControl = "autoPathfind"
	UnitBoost        UnitControl = "boost"
	UnitTarget       UnitControl = "target"
	UnitTargetP      UnitControl = "targetp"
	UnitItemDrop     UnitControl = "itemDrop"
	UnitItemTake     UnitControl = "itemTake"
	UnitPayDrop      UnitControl = "payDrop"
	UnitPayTake      UnitControl = "payTake"
	UnitPayEnter     UnitControl = "payEnter"
	UnitMine         UnitControl = "mine"
	UnitFlag         UnitControl = "flag"
	UnitBuild        UnitControl = "build"
	UnitGetBlock     UnitControl = "getBlock"
	UnitWithin       UnitControl = "within"
	UnitUnbind       UnitControl = "unbind"
)

var UnitControls = []UnitControl{
	UnitIdle, UnitStop, UnitMove, UnitApproach, UnitPathfind, UnitAutoPathfind,
	UnitBoost, UnitTarget, UnitTargetP, UnitItemDrop, UnitItemTake, UnitPayDrop,
	UnitPayTake, UnitPayEnter, UnitMine, UnitFlag, UnitBuild, UnitGetBlock,
	UnitWithin, UnitUnbind,
}
