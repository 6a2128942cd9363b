package domain

// PlanKind identifies a DownloadPlan variant.
type PlanKind string

const (
	PlanProxy  PlanKind = "proxy"
	PlanRemux  PlanKind = "remux"
	PlanPicker PlanKind = "picker"
)

// DownloadPlan is the result of resolving a post. It is one of
// *ProxyPlan, *RemuxPlan or *PickerPlan.
type DownloadPlan interface {
	Kind() PlanKind
	isDownloadPlan()
}

// ProxyPlan relays a single asset as-is.
type ProxyPlan struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	IsPhoto  bool   `json:"is_photo,omitempty"`
}

// RemuxPlan is a single asset that needs container repair or gif conversion.
type RemuxPlan struct {
	URL           string `json:"url"`
	Filename      string `json:"filename"`
	AudioFilename string `json:"audio_filename"`
	IsGif         bool   `json:"is_gif,omitempty"`
}

// PickerPlan lists every media item of a multi-media post.
type PickerPlan struct {
	Items []PickerItem `json:"items"`
}

func (*ProxyPlan) Kind() PlanKind  { return PlanProxy }
func (*RemuxPlan) Kind() PlanKind  { return PlanRemux }
func (*PickerPlan) Kind() PlanKind { return PlanPicker }

func (*ProxyPlan) isDownloadPlan()  {}
func (*RemuxPlan) isDownloadPlan()  {}
func (*PickerPlan) isDownloadPlan() {}

// PickerAction tells the consumer how to fetch a picker item.
type PickerAction string

const (
	ActionDirect PickerAction = "direct"
	ActionProxy  PickerAction = "proxy"
	ActionRemux  PickerAction = "remux"
	ActionGif    PickerAction = "gif"
)

// PickerItemType is the presentational type of a picker item.
type PickerItemType string

const (
	PickerPhoto PickerItemType = "photo"
	PickerVideo PickerItemType = "video"
	PickerGif   PickerItemType = "gif"
)

// PickerItem is one independently downloadable entry of a PickerPlan.
type PickerItem struct {
	Type     PickerItemType `json:"type"`
	URL      string         `json:"url"`
	Thumb    string         `json:"thumb"`
	Filename string         `json:"filename"`
	Action   PickerAction   `json:"action"`
}

// PlanView is the flat wire form of a DownloadPlan, tagged by Type.
type PlanView struct {
	Type          PlanKind     `json:"type"`
	URL           string       `json:"url,omitempty"`
	Filename      string       `json:"filename,omitempty"`
	AudioFilename string       `json:"audio_filename,omitempty"`
	IsPhoto       bool         `json:"is_photo,omitempty"`
	IsGif         bool         `json:"is_gif,omitempty"`
	Items         []PickerItem `json:"items,omitempty"`
}

// NewPlanView flattens plan. It returns nil for a nil plan.
func NewPlanView(plan DownloadPlan) *PlanView {
	switch p := plan.(type) {
	case *ProxyPlan:
		return &PlanView{Type: PlanProxy, URL: p.URL, Filename: p.Filename, IsPhoto: p.IsPhoto}
	case *RemuxPlan:
		return &PlanView{Type: PlanRemux, URL: p.URL, Filename: p.Filename, AudioFilename: p.AudioFilename, IsGif: p.IsGif}
	case *PickerPlan:
		return &PlanView{Type: PlanPicker, Items: p.Items}
	}
	return nil
}
