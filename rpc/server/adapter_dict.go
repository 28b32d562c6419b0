package server

import (
	"github.com/ValentinKolb/erlmap/lib/dict"
	"github.com/ValentinKolb/erlmap/rpc/common"
)

// responseOverhead is the status word and separator of an OK response
const responseOverhead = len(common.StatusOK) + 1

// maxReasonSize caps the reason text of TEMP and PERM responses
const maxReasonSize = 256

func NewDictServerAdapter() IRPCServerAdapter {
	return &dictServerAdapterImpl{}
}

type dictServerAdapterImpl struct{}

func (adapter *dictServerAdapterImpl) Handle(req *common.Request, d dict.IDict) *common.Response {
	// Check for nil map
	if d == nil {
		return common.NewPermResponse("handler: map is nil")
	}

	value, found, err := d.Lookup(req.Key)
	switch {
	case err != nil && dict.IsRetry(err):
		Logger.Warningf("%s: %v", req.Name, err)
		return common.NewTempResponse(reason(err))
	case err != nil:
		Logger.Warningf("%s: %v", req.Name, err)
		return common.NewPermResponse(reason(err))
	case !found:
		return common.NewNotFoundResponse()
	case len(value)+responseOverhead > common.MaxMessageSize:
		Logger.Warningf("%s: value for %q too long (%d bytes)", req.Name, req.Key, len(value))
		return common.NewPermResponse("value too long")
	default:
		return common.NewOKResponse(value)
	}
}

// reason returns the error text cut to maxReasonSize bytes
func reason(err error) string {
	msg := err.Error()
	if len(msg) <= maxReasonSize {
		return msg
	}
	return msg[:maxReasonSize-3] + "..."
}
