package server

import (
	"github.com/ValentinKolb/erlmap/lib/dict"
	"github.com/ValentinKolb/erlmap/rpc/common"
)

// IRPCServerAdapter is the interface for all socketmap server adapters
// It is responsible for turning a request into a response
type IRPCServerAdapter interface {
	// Handle handles a request and returns a response
	// It takes a Request and the map the request names as parameters.
	// Errors are reported as TEMP or PERM responses
	Handle(req *common.Request, d dict.IDict) (resp *common.Response)
}
