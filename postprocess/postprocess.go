// Package postprocess applies ordered content transforms to rendered files
// before they reach disk.
//
//	eng := engine.New()
//	eng.AddPostProcessor(processors.NewHeader(lang.Java))
//	eng.AddPostProcessor(processors.NewNewline())
package postprocess

import "fmt"

// Processor transforms the content rendered for filePath. Implementations
// must be safe for concurrent use and return content unchanged for files
// they do not handle.
type Processor interface {
	ProcessContent(filePath string, content []byte) ([]byte, error)
}

// Namer is implemented by processors that want to be identified in errors.
type Namer interface {
	Name() string
}

// ProcessorFunc adapts a plain function to Processor.
type ProcessorFunc func(filePath string, content []byte) ([]byte, error)

func (f ProcessorFunc) ProcessContent(filePath string, content []byte) ([]byte, error) {
	return f(filePath, content)
}

// Chain runs processors in the order they were added.
type Chain struct {
	processors []Processor
}

func NewChain(processors ...Processor) *Chain {
	return &Chain{processors: append([]Processor(nil), processors...)}
}

func (c *Chain) Add(processors ...Processor) {
	c.processors = append(c.processors, processors...)
}

func (c *Chain) AddFunc(fn func(filePath string, content []byte) ([]byte, error)) {
	c.processors = append(c.processors, ProcessorFunc(fn))
}

// Process feeds content through every processor and stops at the first error.
func (c *Chain) Process(filePath string, content []byte) ([]byte, error) {
	result := content
	for i, processor := range c.processors {
		processed, err := processor.ProcessContent(filePath, result)
		if err != nil {
			return nil, fmt.Errorf("processor %s failed for %s: %w", processorName(i, processor), filePath, err)
		}
		result = processed
	}
	return result, nil
}

func (c *Chain) HasProcessors() bool {
	return len(c.processors) > 0
}

func (c *Chain) Len() int {
	return len(c.processors)
}

func (c *Chain) Clear() {
	c.processors = c.processors[:0]
}

func processorName(index int, p Processor) string {
	if n, ok := p.(Namer); ok {
		return fmt.Sprintf("%d (%s)", index, n.Name())
	}
	return fmt.Sprintf("%d", index)
}
