package creature

// Physics holds the per-type movement profile consumed by the motion integrator.
type Physics struct {
	FPS        int     // animation frames per second
	MinSpeed   float64 // px per frame, lower bound of the variance draw
	MaxSpeed   float64 // px per frame, upper bound
	JumpHeight float64 // peak vertical offset in px
	JumpFrames int     // frames in one jump arc
}

var physicsProfiles = map[Type]Physics{
	TypeSlime:    {FPS: 24, MinSpeed: 1.5, MaxSpeed: 3.5, JumpHeight: 40, JumpFrames: 10},
	TypeMushroom: {FPS: 12, MinSpeed: 0.8, MaxSpeed: 1.8},
}

// PhysicsFor returns the movement profile for a creature type.
func PhysicsFor(t Type) Physics {
	if p, ok := physicsProfiles[t]; ok {
		return p
	}
	return physicsProfiles[TypeSlime]
}

// spriteSheet describes one type/color sprite strip: frame width plus
// per-animation frame counts. Counts vary per sheet, so frame wrapping must
// always look these up rather than hardcode a number.
type spriteSheet struct {
	frameWidth int
	walk       int
	idle       int
	jump       int
	sleep      int
	talk       int
}

var sheets = map[Type]map[Color]spriteSheet{
	TypeSlime: {
		ColorGreen: {frameWidth: 64, walk: 8, idle: 6, jump: 10, sleep: 4, talk: 6},
		ColorBlue:  {frameWidth: 64, walk: 8, idle: 6, jump: 10, sleep: 4, talk: 6},
		ColorPink:  {frameWidth: 72, walk: 10, idle: 6, jump: 10, sleep: 4, talk: 6},
	},
	TypeMushroom: {
		ColorRed:   {frameWidth: 48, walk: 6, idle: 4, sleep: 4, talk: 4},
		ColorBrown: {frameWidth: 48, walk: 6, idle: 4, sleep: 4, talk: 4},
	},
}

// DefaultColor returns the first palette for a type when none was requested.
func DefaultColor(t Type) Color {
	if t == TypeMushroom {
		return ColorRed
	}
	return ColorGreen
}

// Colors lists the valid palette variants for a type.
func Colors(t Type) []Color {
	if t == TypeMushroom {
		return []Color{ColorRed, ColorBrown}
	}
	return []Color{ColorGreen, ColorBlue, ColorPink}
}

func sheetFor(t Type, c Color) spriteSheet {
	if byColor, ok := sheets[t]; ok {
		if s, ok := byColor[c]; ok {
			return s
		}
	}
	return sheets[TypeSlime][ColorGreen]
}

// FrameWidth returns the sprite frame width in px for a type/color pair.
// The motion integrator clamps position to [0, sceneWidth-FrameWidth].
func FrameWidth(t Type, c Color) int {
	return sheetFor(t, c).frameWidth
}

// FrameCount returns the number of animation frames for the given behavior
// on this type/color sheet. Behaviors without a dedicated strip fall back to
// the idle strip so counters still wrap safely.
func FrameCount(t Type, c Color, b Behavior) int {
	s := sheetFor(t, c)
	var n int
	switch b {
	case BehaviorWalkLeft, BehaviorWalkRight:
		n = s.walk
	case BehaviorJump:
		n = s.jump
	case BehaviorSleep:
		n = s.sleep
	case BehaviorTalk:
		n = s.talk
	default:
		n = s.idle
	}
	if n <= 0 {
		n = s.idle
	}
	if n <= 0 {
		n = 1
	}
	return n
}
