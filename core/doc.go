// Package core implements the dynamic invocation engine for load-test
// samplers.
//
// An Engine receives a textual invocation request: a target (a registered
// type name or an encoded/referenced object), a method signature string,
// string-encoded positional arguments and an optional return variable name.
// It parses the signature, locates the matching method on the target's
// runtime type, resolves every argument into a typed value and invokes the
// method via reflection. When a return variable is named, the result is
// published to the calling thread's partition of the variable pool wrapped
// as a call-result, so later invocations of the same logical thread can
// consume it through the "${name}" reference syntax without the value being
// re-parsed as a literal.
//
// Construction follows the functional option pattern:
//
//	reg := registry.New()
//	_ = reg.RegisterType("strutil.Util", strutil.Util{})
//
//	engine, err := core.New(
//		core.WithTypeRegistry(reg),
//		core.WithSignatureValidation(true),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome, err := engine.Invoke(ctx, core.Request{
//		ThreadID:        "thread-1",
//		ClassName:       "strutil.Util",
//		MethodSignature: "concat(Lstring;,Lstring;):Lstring;",
//		Arguments:       map[string]string{"arg0": `"foo"`, "arg1": `"bar"`},
//		ReturnVariable:  "r",
//	})
//
// Every failure is surfaced once as a structured error; nothing is retried
// and no partial invocation with missing arguments is ever attempted.
package core
