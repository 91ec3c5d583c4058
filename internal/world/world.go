// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

// Package world defines the host simulation as seen by one processor.
//
// Entity handles are read from the live world on every access; a handle to a
// destroyed entity reports Valid() == false and every operation on it is a
// soft no-op.
package world

// Kind classifies an entity.
type Kind string

const (
	KindProcessor Kind = "processor"
	KindMessage   Kind = "message"
	KindDisplay   Kind = "display"
	KindMemory    Kind = "memory"
	KindSwitch    Kind = "switch"
	KindTurret    Kind = "turret"
	KindContainer Kind = "container"
	KindBlock     Kind = "block"
	KindUnit      Kind = "unit"
)

// IsUnit reports whether the kind is a mobile unit rather than a building.
func (k Kind) IsUnit() bool { return k == KindUnit }

// Entity is a handle to a building or unit.
type Entity interface {
	ID() int64
	Kind() Kind
	Name() string
	Valid() bool
}

// Link is a named connection from the processor to a building. Entity is nil
// while the linked tile is empty.
type Link struct {
	Name   string
	Entity Entity
}

// Control is a building control operation.
type Control string

const (
	ControlShoot   Control = "shoot"
	ControlShootP  Control = "shootp"
	ControlColor   Control = "color"
	ControlConfig  Control = "config"
	ControlEnabled Control = "enabled"
)

// ControlArgs carries the operands of a Control call.
type ControlArgs struct {
	X, Y   float64
	Unit   Entity
	Shoot  bool
	Value  any
	Enable bool
}

// Graphics is a canvas drawing operation.
type Graphics string

const (
	DrawClear     Graphics = "clear"
	DrawColor     Graphics = "color"
	DrawStroke    Graphics = "stroke"
	DrawLine      Graphics = "line"
	DrawRect      Graphics = "rect"
	DrawLineRect  Graphics = "lineRect"
	DrawPoly      Graphics = "poly"
	DrawLinePoly  Graphics = "linePoly"
	DrawTriangle  Graphics = "triangle"
	DrawImage     Graphics = "image"
	DrawPrint     Graphics = "print"
	DrawTranslate Graphics = "translate"
	DrawScale     Graphics = "scale"
	DrawRotate    Graphics = "rotate"
)

// DrawCmd is one buffered canvas command.
type DrawCmd struct {
	Op   Graphics
	Args []float64
	Text string
}

// RadarQuery selects one entity near a building or unit.
type RadarQuery struct {
	Targets [3]RadarTarget
	Sort    RadarSort
	// Order > 0 picks the closest entity or the largest value; otherwise
	// the opposite.
	Order int
}

// UnitCommand is one unit control instruction.
type UnitCommand struct {
	Op       UnitControl
	X, Y     float64
	Radius   float64
	Flag     bool
	Target   Entity
	Item     string
	Amount   int
	Block    string
	Rotation int
	Config   string
	Value    float64
}

// UnitResult holds the outputs of a unit command.
type UnitResult struct {
	Within    bool
	BlockType string
	Floor     string
	Building  Entity
}

// LocateKind selects what Locate looks for.
type LocateKind string

const (
	LocateBuilding LocateKind = "building"
	LocateOre      LocateKind = "ore"
	LocateSpawn    LocateKind = "spawn"
	LocateDamaged  LocateKind = "damaged"
)

// LocateQuery parameterises Locate.
type LocateQuery struct {
	Kind  LocateKind
	Flag  BlockFlag
	Enemy bool
	Ore   string
}

// LocateResult is the outcome of Locate. Building is nil for positions
// without a building.
type LocateResult struct {
	Found    bool
	X, Y     float64
	Building Entity
}

// World is the processor's view of the host simulation. Implementations must
// be safe for use by one script worker and one host goroutine at a time.
type World interface {
	// Self returns the processor running the script.
	Self() Entity
	// Links returns the processor links in link order.
	Links() []Link

	Sense(target Entity, property string) any
	Control(target Entity, op Control, args ControlArgs)
	Read(target Entity, address int) (float64, bool)
	Write(target Entity, address int, value float64) bool
	Radar(from Entity, q RadarQuery) Entity

	// Print appends to the processor's text buffer; PrintFlush moves it to
	// a message block.
	Print(text string)
	PrintFlush(target Entity)

	// Draw appends to the processor's draw buffer; DrawFlush moves it to a
	// display.
	Draw(cmd DrawCmd)
	DrawFlush(target Entity)

	// Bind selects the next unit of the given type; BindUnit binds a known
	// unit. Both return the bound unit or nil.
	Bind(unitType string) Entity
	BindUnit(unit Entity) Entity
	Bound() Entity

	UnitControl(unit Entity, cmd UnitCommand) UnitResult
	Locate(unit Entity, q LocateQuery) LocateResult
}

// Alive reports whether e is a non-nil, still existing entity.
func Alive(e Entity) bool {
	return e != nil && e.Valid()
}
