package scope

// globals are the ECMAScript builtins. An assignment to one of them is
// never treated as dangling.
var globals = map[string]bool{}

func init() {
	for _, name := range []string{
		// Value properties and functions of the global object.
		"globalThis", "Infinity", "NaN", "undefined", "arguments",
		"eval", "isFinite", "isNaN", "parseFloat", "parseInt",
		"decodeURI", "decodeURIComponent", "encodeURI", "encodeURIComponent",
		"escape", "unescape",

		// Constructors and namespaces.
		"AggregateError", "Array", "ArrayBuffer", "Atomics", "BigInt",
		"BigInt64Array", "BigUint64Array", "Boolean", "DataView", "Date",
		"Error", "EvalError", "FinalizationRegistry", "Float32Array",
		"Float64Array", "Function", "Int8Array", "Int16Array", "Int32Array",
		"Intl", "JSON", "Map", "Math", "Number", "Object", "Promise", "Proxy",
		"RangeError", "ReferenceError", "Reflect", "RegExp", "Set",
		"SharedArrayBuffer", "String", "Symbol", "SyntaxError", "TypeError",
		"URIError", "Uint8Array", "Uint8ClampedArray", "Uint16Array",
		"Uint32Array", "WeakMap", "WeakRef", "WeakSet",
	} {
		globals[name] = true
	}
}

// IsGlobal reports whether name is a builtin global.
func IsGlobal(name string) bool {
	return globals[name]
}
