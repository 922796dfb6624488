package scene

// Render layer indices.
const (
	DefaultLayer = 0
	BloomLayer   = 1
)

// Layers is a 32-bit layer membership mask.
type Layers uint32

// Set makes layer the only membership.
func (l *Layers) Set(layer int) { *l = 1 << uint(layer) }

// Enable adds layer to the membership.
func (l *Layers) Enable(layer int) { *l |= 1 << uint(layer) }

// Disable removes layer from the membership.
func (l *Layers) Disable(layer int) { *l &^= 1 << uint(layer) }

// Has reports membership of layer.
func (l Layers) Has(layer int) bool { return l&(1<<uint(layer)) != 0 }

// Test reports whether l and o share any layer.
func (l Layers) Test(o Layers) bool { return l&o != 0 }
