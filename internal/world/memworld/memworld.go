// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

// Package memworld is an in-memory world.World used by the mcu host and by
// tests. Every method takes the world lock, so the script worker and the
// host goroutine may use it concurrently.
package memworld

import (
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/world"
)

// MemoryCells is the size of a memory cell created without an explicit size.
const MemoryCells = 64

// MaxDrawBuffer bounds the pending draw commands, as the processor does.
const MaxDrawBuffer = 256

// Spec describes an entity to add.
type Spec struct {
	Kind   world.Kind
	Name   string
	X, Y   float64
	Health float64
	Shield float64
	Armor  float64
	Enemy  bool
	Flying bool
	Boss   bool
	Player bool
	Flags  []world.BlockFlag
	Memory int
	Items  map[string]int
}

type entity struct {
	id        int64
	kind      world.Kind
	name      string
	x, y      float64
	health    float64
	maxHealth float64
	shield    float64
	armor     float64
	enemy     bool
	flying    bool
	boss      bool
	player    bool
	flags     []world.BlockFlag

	enabled  bool
	shooting bool
	aimX     float64
	aimY     float64
	color    float64
	config   any
	memory   []float64
	message  string
	display  []world.DrawCmd
	items    map[string]int

	flag     float64
	boosting bool
	mining   bool
	payload  int
}

type ore struct {
	item string
	x, y float64
}

type link struct {
	name string
	id   int64
}

// World is a small simulated map around one processor.
type World struct {
	mu       sync.Mutex
	nextID   int64
	entities map[int64]*entity
	self     int64
	links    []link
	bound    int64
	cursor   map[string]int
	ores     []ore
	spawn    *[2]float64
	printBuf strings.Builder
	drawBuf  []world.DrawCmd
}

// New returns a world containing only the processor, at the origin.
func New() *World {
	w := &World{
		entities: make(map[int64]*entity),
		cursor:   make(map[string]int),
	}
	w.self = w.add(Spec{Kind: world.KindProcessor, Name: "micro-processor", Health: 100})
	return w
}

// handle is the world.Entity implementation.
type handle struct {
	w    *World
	id   int64
	kind world.Kind
	name string
}

func (h *handle) ID() int64        { return h.id }
func (h *handle) Kind() world.Kind { return h.kind }
func (h *handle) Name() string     { return h.name }

func (h *handle) Valid() bool {
	h.w.mu.Lock()
	defer h.w.mu.Unlock()
	_, ok := h.w.entities[h.id]
	return ok
}

func (h *handle) String() string { return h.name + "#" + strconv.FormatInt(h.id, 10) }

func (w *World) handle(e *entity) world.Entity {
	if e == nil {
		return nil
	}
	return &handle{w: w, id: e.id, kind: e.kind, name: e.name}
}

// lookup resolves a handle created by this world. Caller holds mu.
func (w *World) lookup(e world.Entity) *entity {
	h, ok := e.(*handle)
	if !ok || h == nil || h.w != w {
		return nil
	}
	return w.entities[h.id]
}

func (w *World) add(s Spec) int64 {
	w.nextID++
	e := &entity{
		id:        w.nextID,
		kind:      s.Kind,
		name:      s.Name,
		x:         s.X,
		y:         s.Y,
		health:    s.Health,
		maxHealth: s.Health,
		shield:    s.Shield,
		armor:     s.Armor,
		enemy:     s.Enemy,
		flying:    s.Flying,
		boss:      s.Boss,
		player:    s.Player,
		flags:     s.Flags,
		enabled:   true,
		items:     make(map[string]int),
	}
	if e.name == "" {
		e.name = string(s.Kind)
	}
	if e.health == 0 {
		e.health, e.maxHealth = 100, 100
	}
	for k, v := range s.Items {
		e.items[k] = v
	}
	if s.Kind == world.KindMemory {
		n := s.Memory
		if n <= 0 {
			n = MemoryCells
		}
		e.memory = make([]float64, n)
	}
	w.entities[e.id] = e
	return e.id
}

// Add creates an entity and returns its handle.
func (w *World) Add(s Spec) world.Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.handle(w.entities[w.add(s)])
}

// AddUnit creates an allied unit of the given type.
func (w *World) AddUnit(unitType string, x, y float64) world.Entity {
	return w.Add(Spec{Kind: world.KindUnit, Name: unitType, X: x, Y: y})
}

// Link connects a building to the processor under name. A nil entity adds
// an empty link.
func (w *World) Link(name string, e world.Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	l := link{name: name}
	if e != nil {
		l.id = e.ID()
	}
	w.links = append(w.links, l)
}

// AddOre places an ore tile.
func (w *World) AddOre(item string, x, y float64) {
	w.mu.Lock()
	w.ores = append(w.ores, ore{item: item, x: x, y: y})
	w.mu.Unlock()
}

// SetSpawn sets the enemy spawn point.
func (w *World) SetSpawn(x, y float64) {
	w.mu.Lock()
	w.spawn = &[2]float64{x, y}
	w.mu.Unlock()
}

// Destroy removes an entity. Existing handles become invalid.
func (w *World) Destroy(e world.Entity) {
	if e == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.entities, e.ID())
	if w.bound == e.ID() {
		w.bound = 0
	}
}

// sorted returns live entities in creation order. Caller holds mu.
func (w *World) sorted() []*entity {
	out := make([]*entity, 0, len(w.entities))
	for _, e := range w.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Self implements world.World.
func (w *World) Self() world.Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.handle(w.entities[w.self])
}

// Links implements world.World.
func (w *World) Links() []world.Link {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]world.Link, 0, len(w.links))
	for _, l := range w.links {
		out = append(out, world.Link{Name: l.name, Entity: w.handle(w.entities[l.id])})
	}
	return out
}

// Sense implements world.World. Property names may carry the "@" prefix.
func (w *World) Sense(target world.Entity, property string) any {
	w.mu.Lock()
	defer w.mu.Unlock()
	e := w.lookup(target)
	if e == nil {
		return nil
	}

	switch strings.TrimPrefix(property, "@") {
	case "x":
		return e.x
	case "y":
		return e.y
	case "health":
		return e.health
	case "maxHealth":
		return e.maxHealth
	case "shield":
		return e.shield
	case "armor":
		return e.armor
	case "enabled":
		return boolNum(e.enabled)
	case "shooting":
		return boolNum(e.shooting)
	case "flag":
		return e.flag
	case "boosting":
		return boolNum(e.boosting)
	case "mining":
		return boolNum(e.mining)
	case "payloadCount":
		return float64(e.payload)
	case "color":
		return e.color
	case "memoryCapacity":
		return float64(len(e.memory))
	case "totalItems":
		total := 0
		for _, n := range e.items {
			total += n
		}
		return float64(total)
	case "type", "name":
		return e.name
	case "dead":
		return 0.0
	case "config":
		return e.config
	}
	if n, ok := e.items[strings.TrimPrefix(property, "@")]; ok {
		return float64(n)
	}
	return nil
}

func boolNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Control implements world.World.
func (w *World) Control(target world.Entity, op world.Control, args world.ControlArgs) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e := w.lookup(target)
	if e == nil {
		return
	}

	switch op {
	case world.ControlShoot:
		e.shooting, e.aimX, e.aimY = args.Shoot, args.X, args.Y
	case world.ControlShootP:
		if u := w.lookup(args.Unit); u != nil {
			e.shooting, e.aimX, e.aimY = args.Shoot, u.x, u.y
		}
	case world.ControlColor:
		if f, ok := args.Value.(float64); ok {
			e.color = f
		}
	case world.ControlConfig:
		e.config = args.Value
	case world.ControlEnabled:
		e.enabled = args.Enable
	}
}

// Read implements world.World. Only memory cells are readable.
func (w *World) Read(target world.Entity, address int) (float64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e := w.lookup(target)
	if e == nil || address < 0 || address >= len(e.memory) {
		return 0, false
	}
	return e.memory[address], true
}

// Write implements world.World.
func (w *World) Write(target world.Entity, address int, value float64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	e := w.lookup(target)
	if e == nil || address < 0 || address >= len(e.memory) {
		return false
	}
	e.memory[address] = value
	return true
}

// Radar implements world.World. It scans units only.
func (w *World) Radar(from world.Entity, q world.RadarQuery) world.Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	src := w.lookup(from)
	if src == nil {
		return nil
	}

	var best *entity
	var bestKey float64
	for _, e := range w.sorted() {
		if e.kind != world.KindUnit || e.id == src.id || !matches(e, q.Targets) {
			continue
		}
		key := sortKey(src, e, q.Sort)
		if q.Order <= 0 {
			key = -key
		}
		if best == nil || key > bestKey {
			best, bestKey = e, key
		}
	}
	return w.handle(best)
}

func matches(e *entity, targets [3]world.RadarTarget) bool {
	for _, t := range targets {
		ok := true
		switch t {
		case world.TargetEnemy, world.TargetAttacker:
			ok = e.enemy
		case world.TargetAlly:
			ok = !e.enemy
		case world.TargetPlayer:
			ok = e.player
		case world.TargetFlying:
			ok = e.flying
		case world.TargetGround:
			ok = !e.flying
		case world.TargetBoss:
			ok = e.boss
		}
		if !ok {
			return false
		}
	}
	return true
}

func sortKey(src, e *entity, s world.RadarSort) float64 {
	switch s {
	case world.SortHealth:
		return e.health
	case world.SortShield:
		return e.shield
	case world.SortArmor:
		return e.armor
	case world.SortMaxHealth:
		return e.maxHealth
	default:
		return -dist(src.x, src.y, e.x, e.y)
	}
}

func dist(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// Print implements world.World.
func (w *World) Print(text string) {
	w.mu.Lock()
	w.printBuf.WriteString(text)
	w.mu.Unlock()
}

// PrintFlush implements world.World. The buffer is cleared even when the
// target is not a message block.
func (w *World) PrintFlush(target world.Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if e := w.lookup(target); e != nil && e.kind == world.KindMessage {
		e.message = w.printBuf.String()
	}
	w.printBuf.Reset()
}

// Draw implements world.World. Commands beyond MaxDrawBuffer are dropped.
func (w *World) Draw(cmd world.DrawCmd) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.drawBuf) < MaxDrawBuffer {
		w.drawBuf = append(w.drawBuf, cmd)
	}
}

// DrawFlush implements world.World.
func (w *World) DrawFlush(target world.Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if e := w.lookup(target); e != nil && e.kind == world.KindDisplay {
		e.display = append(e.display[:0], w.drawBuf...)
	}
	w.drawBuf = w.drawBuf[:0]
}

// Bind implements world.World, cycling through allied units of a type.
func (w *World) Bind(unitType string) world.Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	unitType = strings.TrimPrefix(unitType, "@")

	var candidates []*entity
	for _, e := range w.sorted() {
		if e.kind == world.KindUnit && !e.enemy && e.name == unitType {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		w.bound = 0
		return nil
	}
	i := w.cursor[unitType] % len(candidates)
	w.cursor[unitType] = i + 1
	w.bound = candidates[i].id
	return w.handle(candidates[i])
}

// BindUnit implements world.World.
func (w *World) BindUnit(unit world.Entity) world.Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	e := w.lookup(unit)
	if e == nil || e.kind != world.KindUnit {
		return nil
	}
	w.bound = e.id
	return w.handle(e)
}

// Bound implements world.World.
func (w *World) Bound() world.Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.handle(w.entities[w.bound])
}

// UnitControl implements world.World. Movement is applied instantly.
func (w *World) UnitControl(unit world.Entity, cmd world.UnitCommand) world.UnitResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	u := w.lookup(unit)
	if u == nil || u.kind != world.KindUnit {
		return world.UnitResult{}
	}

	var res world.UnitResult
	switch cmd.Op {
	case world.UnitIdle, world.UnitStop:
		u.mining, u.shooting = false, false
	case world.UnitMove, world.UnitPathfind:
		u.x, u.y = cmd.X, cmd.Y
	case world.UnitApproach:
		if d := dist(u.x, u.y, cmd.X, cmd.Y); d > cmd.Radius && d > 0 {
			f := (d - cmd.Radius) / d
			u.x += (cmd.X - u.x) * f
			u.y += (cmd.Y - u.y) * f
		}
	case world.UnitAutoPathfind:
		if w.spawn != nil {
			u.x, u.y = w.spawn[0], w.spawn[1]
		}
	case world.UnitWithin:
		res.Within = dist(u.x, u.y, cmd.X, cmd.Y) <= cmd.Radius
	case world.UnitBoost:
		u.boosting = cmd.Flag
	case world.UnitTarget:
		u.shooting, u.aimX, u.aimY = cmd.Flag, cmd.X, cmd.Y
	case world.UnitTargetP:
		if t := w.lookup(cmd.Target); t != nil {
			u.shooting, u.aimX, u.aimY = cmd.Flag, t.x, t.y
		}
	case world.UnitItemTake:
		if b := w.lookup(cmd.Target); b != nil && cmd.Amount > 0 {
			n := min(cmd.Amount, b.items[cmd.Item])
			b.items[cmd.Item] -= n
			u.items[cmd.Item] += n
		}
	case world.UnitItemDrop:
		if b := w.lookup(cmd.Target); b != nil && cmd.Amount > 0 {
			for item, have := range u.items {
				n := min(cmd.Amount, have)
				u.items[item] -= n
				b.items[item] += n
			}
		}
	case world.UnitPayTake:
		u.payload++
	case world.UnitPayDrop:
		u.payload = 0
	case world.UnitPayEnter:
		delete(w.entities, u.id)
		if w.bound == u.id {
			w.bound = 0
		}
	case world.UnitMine:
		u.mining, u.aimX, u.aimY = true, cmd.X, cmd.Y
	case world.UnitFlag:
		u.flag = cmd.Value
	case world.UnitBuild:
		if cmd.Block != "" && w.blockAt(cmd.X, cmd.Y) == nil {
			w.add(Spec{Kind: world.KindBlock, Name: strings.TrimPrefix(cmd.Block, "@"), X: math.Round(cmd.X), Y: math.Round(cmd.Y)})
		}
	case world.UnitGetBlock:
		res.Floor = "stone"
		res.BlockType = "air"
		if b := w.blockAt(cmd.X, cmd.Y); b != nil {
			res.BlockType = b.name
			res.Building = w.handle(b)
		}
	case world.UnitUnbind:
		w.bound = 0
	}
	return res
}

// blockAt finds the building on the tile containing (x, y). Caller holds mu.
func (w *World) blockAt(x, y float64) *entity {
	tx, ty := math.Round(x), math.Round(y)
	for _, e := range w.sorted() {
		if e.kind != world.KindUnit && math.Round(e.x) == tx && math.Round(e.y) == ty {
			return e
		}
	}
	return nil
}

// Locate implements world.World, searching from the unit's position.
func (w *World) Locate(unit world.Entity, q world.LocateQuery) world.LocateResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	u := w.lookup(unit)
	if u == nil {
		return world.LocateResult{}
	}

	switch q.Kind {
	case world.LocateOre:
		item := strings.TrimPrefix(q.Ore, "@")
		best := -1
		for i, o := range w.ores {
			if o.item == item && (best < 0 || dist(u.x, u.y, o.x, o.y) < dist(u.x, u.y, w.ores[best].x, w.ores[best].y)) {
				best = i
			}
		}
		if best < 0 {
			return world.LocateResult{}
		}
		return world.LocateResult{Found: true, X: w.ores[best].x, Y: w.ores[best].y}
	case world.LocateSpawn:
		if w.spawn == nil {
			return world.LocateResult{}
		}
		return world.LocateResult{Found: true, X: w.spawn[0], Y: w.spawn[1]}
	}

	var best *entity
	for _, e := range w.sorted() {
		if e.kind == world.KindUnit {
			continue
		}
		switch q.Kind {
		case world.LocateBuilding:
			if e.enemy != q.Enemy || !slices.Contains(e.flags, q.Flag) {
				continue
			}
		case world.LocateDamaged:
			if e.enemy || e.health >= e.maxHealth {
				continue
			}
		default:
			continue
		}
		if best == nil || dist(u.x, u.y, e.x, e.y) < dist(u.x, u.y, best.x, best.y) {
			best = e
		}
	}
	if best == nil {
		return world.LocateResult{}
	}
	return world.LocateResult{Found: true, X: best.x, Y: best.y, Building: w.handle(best)}
}
