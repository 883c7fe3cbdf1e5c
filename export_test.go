package stdresp

// Test-only exports for internal functions.
var (
	HasParamTags     = hasParamTags
	HasBodyField     = hasBodyField
	HasInjectedField = hasInjectedField
	TagOptions       = tagOptions
	IsSequence       = isSequence
	MergeContracts   = mergeContracts
)

// ContractOf resolves a standalone declaration the way route options do.
func ContractOf(decl interface{ contract() Contract }) Contract {
	return decl.contract()
}

// ContractOfRoute resolves a RouteConfig entry.
func ContractOfRoute(rc RouteConfig) Contract {
	return rc.contract()
}

// CheckResponse runs fn the way the router does for a configured
// ResponseValidator.
func CheckResponse(fn ResponseValidator, data any) bool {
	return responseCheck{fn: fn, set: true}.valid(data)
}
