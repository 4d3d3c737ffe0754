package night

// SchemaKind is the closed set of action payload shapes (spec.md §3).
type SchemaKind string

const (
	SchemaChooseSeat      SchemaKind = "chooseSeat"
	SchemaWolfVote        SchemaKind = "wolfVote"
	SchemaCompound        SchemaKind = "compound"
	SchemaSwap            SchemaKind = "swap"
	SchemaConfirm         SchemaKind = "confirm"
	SchemaMultiChooseSeat SchemaKind = "multiChooseSeat"
	SchemaGroupConfirm    SchemaKind = "groupConfirm"
)

// ConstraintTag is a pre-computed validator constraint attached to a step.
type ConstraintTag string

const (
	ConstraintNotSelf          ConstraintTag = "notSelf"
	ConstraintAliveTarget      ConstraintTag = "aliveTarget"
	ConstraintWolfTeamOnly     ConstraintTag = "wolfTeamOnly"
	ConstraintNotImmuneToCheck ConstraintTag = "notImmuneToCheck"
)

// RevealKind is the closed enum of private-reveal payload kinds (spec.md §6).
type RevealKind string

const (
	RevealSeer       RevealKind = "SEER_REVEAL"
	RevealMirrorSeer RevealKind = "MIRROR_SEER_REVEAL"
	RevealDrunkSeer  RevealKind = "DRUNK_SEER_REVEAL"
	RevealGargoyle   RevealKind = "GARGOYLE_REVEAL"
	RevealPsychic    RevealKind = "PSYCHIC_REVEAL"
	RevealWolfRobot  RevealKind = "WOLF_ROBOT_REVEAL"
	RevealPureWhite  RevealKind = "PURE_WHITE_REVEAL"
	RevealWolfWitch  RevealKind = "WOLF_WITCH_REVEAL"
)

// StepId identifies one step of the night plan. A step is always bound to
// exactly one role and one schema.
type StepId string

const (
	StepNightmareBlock     StepId = "nightmareBlock"
	StepWolfQueenCharm     StepId = "wolfQueenCharm"
	StepDreamcatcherDream  StepId = "dreamcatcherDream"
	StepGuardProtect       StepId = "guardProtect"
	StepMagicianSwap       StepId = "magicianSwap"
	StepWolfKill           StepId = "wolfKill"
	StepWitchAction        StepId = "witchAction"
	StepWolfRobotLearn     StepId = "wolfRobotLearn"
	StepCelebrityDream     StepId = "celebrityDream"
	StepSeerCheck          StepId = "seerCheck"
	StepGargoyleCheck      StepId = "gargoyleCheck"
	StepPsychicCheck       StepId = "psychicCheck"
	StepMirrorSeerCheck    StepId = "mirrorSeerCheck"
	StepDrunkSeerCheck     StepId = "drunkSeerCheck"
	StepPureWhiteCheck     StepId = "pureWhiteCheck"
	StepWolfWitchCheck     StepId = "wolfWitchCheck"
	StepPiperHypnotize     StepId = "piperHypnotize"
)

// stepDef is one row of the schema registry: which role owns the step,
// what payload shape it takes, what constraints the validator enforces,
// which reveal kind (if any) it emits, and its priority in the plan's
// total order (lower runs first).
//
// Priority encodes the ordering rule from spec.md §4.2: nightmareBlock
// before all protectors, guardProtect before wolfKill, wolfKill before
// witchAction, magicianSwap before every identity-check step.
type stepDef struct {
	Role       RoleId
	Schema     SchemaKind
	Priority   int
	Constraints []ConstraintTag
	Reveal     RevealKind // zero value if the step emits no reveal
}

var stepRegistry = map[StepId]stepDef{
	StepNightmareBlock: {
		Role: RoleNightmare, Schema: SchemaChooseSeat, Priority: 10,
		Constraints: []ConstraintTag{ConstraintAliveTarget},
	},
	StepWolfQueenCharm: {
		Role: RoleWolfQueen, Schema: SchemaChooseSeat, Priority: 20,
		Constraints: []ConstraintTag{ConstraintNotSelf, ConstraintAliveTarget},
	},
	StepDreamcatcherDream: {
		Role: RoleDreamcatcher, Schema: SchemaChooseSeat, Priority: 25,
		Constraints: []ConstraintTag{ConstraintNotSelf, ConstraintAliveTarget},
	},
	StepGuardProtect: {
		Role: RoleGuard, Schema: SchemaChooseSeat, Priority: 30,
		Constraints: []ConstraintTag{ConstraintAliveTarget},
	},
	StepMagicianSwap: {
		Role: RoleMagician, Schema: SchemaSwap, Priority: 40,
	},
	StepWolfKill: {
		Role: RoleWolf, Schema: SchemaWolfVote, Priority: 50,
		Constraints: []ConstraintTag{ConstraintAliveTarget, ConstraintNotImmuneToCheck},
	},
	StepWitchAction: {
		Role: RoleWitch, Schema: SchemaCompound, Priority: 60,
	},
	StepWolfRobotLearn: {
		Role: RoleWolfRobot, Schema: SchemaChooseSeat, Priority: 70,
		Constraints: []ConstraintTag{ConstraintNotSelf, ConstraintAliveTarget},
		Reveal:      RevealWolfRobot,
	},
	StepCelebrityDream: {
		Role: RoleCelebrity, Schema: SchemaChooseSeat, Priority: 80,
		Constraints: []ConstraintTag{ConstraintNotSelf, ConstraintAliveTarget},
	},
	StepSeerCheck: {
		Role: RoleSeer, Schema: SchemaChooseSeat, Priority: 90,
		Constraints: []ConstraintTag{ConstraintAliveTarget},
		Reveal:      RevealSeer,
	},
	StepGargoyleCheck: {
		Role: RoleGargoyle, Schema: SchemaChooseSeat, Priority: 91,
		Constraints: []ConstraintTag{ConstraintAliveTarget},
		Reveal:      RevealGargoyle,
	},
	StepPsychicCheck: {
		Role: RolePsychic, Schema: SchemaChooseSeat, Priority: 92,
		Constraints: []ConstraintTag{ConstraintAliveTarget},
		Reveal:      RevealPsychic,
	},
	StepMirrorSeerCheck: {
		Role: RoleMirrorSeer, Schema: SchemaChooseSeat, Priority: 93,
		Constraints: []ConstraintTag{ConstraintAliveTarget},
		Reveal:      RevealMirrorSeer,
	},
	StepDrunkSeerCheck: {
		Role: RoleDrunkSeer, Schema: SchemaChooseSeat, Priority: 94,
		Constraints: []ConstraintTag{ConstraintAliveTarget},
		Reveal:      RevealDrunkSeer,
	},
	StepPureWhiteCheck: {
		Role: RolePureWhite, Schema: SchemaChooseSeat, Priority: 95,
		Constraints: []ConstraintTag{ConstraintAliveTarget},
		Reveal:      RevealPureWhite,
	},
	StepWolfWitchCheck: {
		Role: RoleWolfWitch, Schema: SchemaChooseSeat, Priority: 96,
		Constraints: []ConstraintTag{ConstraintAliveTarget},
		Reveal:      RevealWolfWitch,
	},
	StepPiperHypnotize: {
		Role: RolePiper, Schema: SchemaMultiChooseSeat, Priority: 100,
		Constraints: []ConstraintTag{ConstraintNotSelf, ConstraintAliveTarget},
	},
}

// SchemaFor returns the payload shape a step expects.
func SchemaFor(id StepId) SchemaKind {
	return stepRegistry[id].Schema
}

// RoleForStep returns the role a step is bound to.
func RoleForStep(id StepId) RoleId {
	return stepRegistry[id].Role
}

// ConstraintsFor returns the pre-computed constraint tokens for a step.
func ConstraintsFor(id StepId) []ConstraintTag {
	return stepRegistry[id].Constraints
}

// RevealKindFor returns the reveal kind a step emits, and whether it emits
// one at all.
func RevealKindFor(id StepId) (RevealKind, bool) {
	d, ok := stepRegistry[id]
	if !ok || d.Reveal == "" {
		return "", false
	}
	return d.Reveal, true
}
