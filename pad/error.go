package pad

import (
	"fmt"

	"github.com/xaionaro-go/avtimestamp/types"
)

type ErrAlreadyLinked struct {
	Pad string
}

func (e ErrAlreadyLinked) Error() string {
	return fmt.Sprintf("pad '%s' is already linked", e.Pad)
}

type ErrIncompatibleCaps struct {
	Pad      string
	Caps     types.Caps
	Template types.Caps
}

func (e ErrIncompatibleCaps) Error() string {
	return fmt.Sprintf("pad '%s' has fixed caps '%s' which do not accept '%s'", e.Pad, e.Template, e.Caps)
}
