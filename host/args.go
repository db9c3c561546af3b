package host

import "github.com/wippyai/glproxy/dispatch"

// argReader decodes call arguments, keeping the first error.
type argReader struct {
	err    error
	args   dispatch.Args
	method dispatch.Method
}

func (r *argReader) u32(i int) uint32 {
	if r.err != nil {
		return 0
	}
	v, err := r.args.Uint32(r.method, i)
	r.err = err
	return v
}

func (r *argReader) id(i int) uint64 {
	if r.err != nil {
		return 0
	}
	v, err := r.args.Uint64(r.method, i)
	r.err = err
	return v
}

func (r *argReader) i64(i int) int64 {
	if r.err != nil {
		return 0
	}
	v, err := r.args.Int(r.method, i)
	r.err = err
	return v
}

func (r *argReader) f64(i int) float64 {
	if r.err != nil {
		return 0
	}
	v, err := r.args.Float(r.method, i)
	r.err = err
	return v
}

func (r *argReader) flag(i int) bool {
	if r.err != nil {
		return false
	}
	v, err := r.args.Bool(r.method, i)
	r.err = err
	return v
}

func (r *argReader) str(i int) string {
	if r.err != nil {
		return ""
	}
	v, err := r.args.Text(r.method, i)
	r.err = err
	return v
}

func (r *argReader) bytes(i int) []byte {
	if r.err != nil {
		return nil
	}
	v, err := r.args.Bytes(r.method, i)
	r.err = err
	return v
}

func (r *argReader) floats(i int) []float64 {
	if r.err != nil {
		return nil
	}
	v, err := r.args.Floats(r.method, i)
	r.err = err
	return v
}

func (r *argReader) strs(i int) []string {
	if r.err != nil {
		return nil
	}
	v, err := r.args.Strings(r.method, i)
	r.err = err
	return v
}
