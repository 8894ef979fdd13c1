package contracts

// GeneratedSignal is one row produced by the signal generation script
type GeneratedSignal struct {
	Ticker         string `json:"Ticker"`
	CombinedSignal string `json:"Combined_Signal"`
}

// SignalSet is the signal generation output
type SignalSet struct {
	Signals []GeneratedSignal `json:"signals"`
}
