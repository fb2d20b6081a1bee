package config

// Run modes
const (
	ModeSequential = "sequential"
	ModeLazy       = "lazy"
	ModeParallel   = "parallel"
)

// Schedule types
const (
	ScheduleExponential = "exponential"
	ScheduleLinear      = "linear"
	ScheduleValues      = "values"
)

// Convergence strategies
const (
	ConvergenceNoImprovement = "no_improvement"
	ConvergencePlateau       = "plateau"
	ConvergenceCombined      = "combined"
)

// Refinement methods
const (
	RefineNelderMead = "nelder_mead"
	RefineBFGS       = "bfgs"
)

// RunConfig describes one annealing run
type RunConfig struct {
	LogLevel     string       `yaml:"log_level"`
	LogFormat    string       `yaml:"log_format"` // json or text
	Mode         string       `yaml:"mode"`       // sequential, lazy or parallel
	Seed         *uint64      `yaml:"seed,omitempty"`
	Problem      Problem      `yaml:"problem"`
	Anneal       Anneal       `yaml:"anneal"`
	Schedule     Schedule     `yaml:"schedule"`
	Perturbation Perturbation `yaml:"perturbation"`
	Convergence  *Convergence `yaml:"convergence,omitempty"`
	Refine       *Refine      `yaml:"refine,omitempty"`
}

// Problem selects the benchmark objective and the starting point
type Problem struct {
	Objective string    `yaml:"objective"` // sphere, ackley, rastrigin, schwefel
	Start     []float64 `yaml:"start"`
}

// Anneal holds the annealing hyperparameters
type Anneal struct {
	K           float32 `yaml:"k"`
	ChainLength int     `yaml:"chain_length"`
	BatchSize   int     `yaml:"batch_size,omitempty"` // parallel mode only
}

// Schedule describes the cooling schedule
type Schedule struct {
	Type   string    `yaml:"type"`
	Start  float32   `yaml:"start,omitempty"`
	End    float32   `yaml:"end,omitempty"`   // linear only
	Alpha  float32   `yaml:"alpha,omitempty"` // exponential only
	Steps  int       `yaml:"steps,omitempty"`
	Values []float32 `yaml:"values,omitempty"` // values only
}

// Perturbation configures the Gaussian neighbour operator
type Perturbation struct {
	Scale float64  `yaml:"scale"`
	Lower *float64 `yaml:"lower,omitempty"`
	Upper *float64 `yaml:"upper,omitempty"`
}

// Bounded reports whether proposals are clamped to a box
func (p Perturbation) Bounded() bool {
	return p.Lower != nil && p.Upper != nil
}

// Convergence configures early stopping for lazy runs
type Convergence struct {
	Strategy            string  `yaml:"strategy"`
	NoImprovementStages int     `yaml:"no_improvement_stages,omitempty"`
	PlateauStages       int     `yaml:"plateau_stages,omitempty"`
	Tolerance           float64 `yaml:"tolerance,omitempty"`
	MinStages           int     `yaml:"min_stages,omitempty"`
	MaxTemperature      float64 `yaml:"max_temperature,omitempty"` // only stages at or below count
}

// Refine configures local polishing of the annealed result
type Refine struct {
	Method          string `yaml:"method"`
	MajorIterations int    `yaml:"major_iterations,omitempty"`
}
