package router

import "net/http"

type methodTyp uint16

const (
	mCONNECT methodTyp = 1 << iota
	mDELETE
	mGET
	mHEAD
	mOPTIONS
	mPATCH
	mPOST
	mPUT
	mTRACE
)

// mALL binds the fallback endpoint of a node: it serves any method,
// including ones outside methodMap.
const mALL = mCONNECT | mDELETE | mGET | mHEAD | mOPTIONS | mPATCH | mPOST | mPUT | mTRACE

var methodMap = map[string]methodTyp{
	http.MethodConnect: mCONNECT,
	http.MethodDelete:  mDELETE,
	http.MethodGet:     mGET,
	http.MethodHead:    mHEAD,
	http.MethodOptions: mOPTIONS,
	http.MethodPatch:   mPATCH,
	http.MethodPost:    mPOST,
	http.MethodPut:     mPUT,
	http.MethodTrace:   mTRACE,
}

// methodOrder lists methods alphabetically; Allow headers follow it.
var methodOrder = [...]methodTyp{mCONNECT, mDELETE, mGET, mHEAD, mOPTIONS, mPATCH, mPOST, mPUT, mTRACE}

var reverseMethodMap = map[methodTyp]string{
	mCONNECT: http.MethodConnect,
	mDELETE:  http.MethodDelete,
	mGET:     http.MethodGet,
	mHEAD:    http.MethodHead,
	mOPTIONS: http.MethodOptions,
	mPATCH:   http.MethodPatch,
	mPOST:    http.MethodPost,
	mPUT:     http.MethodPut,
	mTRACE:   http.MethodTrace,
}

// parseMethod returns 0 for methods the router has no dedicated slot for.
// Method names are case-sensitive.
func parseMethod(method string) methodTyp {
	return methodMap[method]
}

func methodNames(set methodTyp) []string {
	if set == 0 {
		return nil
	}
	names := make([]string, 0, len(methodOrder))
	for _, mt := range methodOrder {
		if set&mt != 0 {
			names = append(names, reverseMethodMap[mt])
		}
	}
	return names
}

func methodLabel(mt methodTyp) string {
	if mt == mALL {
		return "*"
	}
	return reverseMethodMap[mt]
}
