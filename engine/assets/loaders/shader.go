package loaders

import (
	"fmt"
	"path/filepath"
)

const spirvMagic uint32 = 0x07230203

type ShaderStage string

const (
	ShaderStageVertex   ShaderStage = "vert"
	ShaderStageFragment ShaderStage = "frag"
)

// ShaderLoader reads compiled SPIR-V modules named <name>.<stage>.spv from
// Dir, as produced by `mage build:shaders`.
type ShaderLoader struct {
	Dir string
}

func (sl *ShaderLoader) Path(name string, stage ShaderStage) string {
	return filepath.Join(sl.Dir, fmt.Sprintf("%s.%s.spv", name, stage))
}

// Load returns the SPIR-V words of one shader stage.
func (sl *ShaderLoader) Load(name string, stage ShaderStage) ([]uint32, error) {
	path := sl.Path(name, stage)
	data, err := ReadBinary(path)
	if err != nil {
		return nil, err
	}
	return ParseSPIRV(path, data)
}

// ParseSPIRV validates the module header and converts it to words.
func ParseSPIRV(name string, data []byte) ([]uint32, error) {
	if len(data) < 20 || len(data)%4 != 0 {
		return nil, fmt.Errorf("shader %s: invalid SPIR-V size %d", name, len(data))
	}
	code := bytesToBytecode(data)
	if code[0] != spirvMagic {
		return nil, fmt.Errorf("shader %s: bad SPIR-V magic 0x%08x", name, code[0])
	}
	return code, nil
}
