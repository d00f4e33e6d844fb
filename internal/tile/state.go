package tile

// State is the orchestrator's position in the load pipeline.
type State int

const (
	Idle State = iota
	MetadataLoading
	TexturesLoading
	HeightMapsLoading
	Building
	Ready
	Failed
)

var stateNames = [...]string{
	Idle:              "idle",
	MetadataLoading:   "metadata-loading",
	TexturesLoading:   "textures-loading",
	HeightMapsLoading: "heightmaps-loading",
	Building:          "building",
	Ready:             "ready",
	Failed:            "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transitions will happen.
func (s State) Terminal() bool {
	return s == Ready || s == Failed
}

// Progress describes one completed pipeline step.
type Progress struct {
	State State
	Tile  int // tile index for per-tile steps, otherwise -1
	Done  int
	Total int // 0 until the metadata is known
}
