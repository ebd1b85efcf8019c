//go:build cgo && (linux || darwin)

package vips

/*
#cgo linux LDFLAGS: -ldl
#cgo pkg-config: libffi
#include <dlfcn.h>
#include <ffi.h>
#include <stdint.h>
#include <stdlib.h>

enum { VO_RET_VOID, VO_RET_SINT, VO_RET_POINTER };

static void* vo_dlopen(const char* path) {
	return dlopen(path, RTLD_LAZY | RTLD_GLOBAL);
}

static const char* vo_dlerror(void) {
	return dlerror();
}

static void* vo_dlsym(void* h, const char* name, const char** err) {
	dlerror();
	void* p = dlsym(h, name);
	const char* e = dlerror();
	*err = e;
	return e ? NULL : p;
}

static ffi_type* vo_type_sint(void)    { return &ffi_type_sint; }
static ffi_type* vo_type_double(void)  { return &ffi_type_double; }
static ffi_type* vo_type_pointer(void) { return &ffi_type_pointer; }

// vo_call prepares a cif on the C stack and performs the call.
// Returns nonzero when libffi rejects the signature.
static int vo_call(void* fn, int variadic, unsigned int nfixed, unsigned int ntotal,
		ffi_type** atypes, void** avalues, int rkind, uint64_t* result) {
	ffi_cif cif;
	ffi_type* rtype = &ffi_type_void;
	ffi_status status;
	ffi_arg ret = 0;

	if (rkind == VO_RET_SINT) {
		rtype = &ffi_type_sint;
	} else if (rkind == VO_RET_POINTER) {
		rtype = &ffi_type_pointer;
	}
	if (variadic) {
		status = ffi_prep_cif_var(&cif, FFI_DEFAULT_ABI, nfixed, ntotal, rtype, atypes);
	} else {
		status = ffi_prep_cif(&cif, FFI_DEFAULT_ABI, ntotal, rtype, atypes);
	}
	if (status != FFI_OK) {
		return (int)status;
	}
	ffi_call(&cif, FFI_FN(fn), &ret, avalues);
	*result = (uint64_t)ret;
	return 0;
}

extern void voGoLog(char* domain, int flags, char* message);

static void vo_log_handler(const char* domain, int flags, const char* message, void* data) {
	voGoLog((char*)domain, flags, (char*)message);
}

typedef unsigned int (*vo_log_set_fn)(const char*, int, void*, void*);

// all GLib levels plus the fatal and recursion flags
static unsigned int vo_set_log_handler(void* fn, const char* domain) {
	return ((vo_log_set_fn)fn)(domain, 0xFF, (void*)vo_log_handler, NULL);
}

typedef const char* (*vo_str_fn)(void);
typedef void (*vo_void_fn)(void);
typedef int (*vo_int_str_fn)(const char*);
typedef int (*vo_int_int_fn)(int);
typedef void (*vo_void_int_fn)(int);
typedef void (*vo_void_size_fn)(size_t);
typedef void (*vo_void_ptr_fn)(uintptr_t);
typedef int (*vo_int_ptr_fn)(uintptr_t);
typedef void* (*vo_mem_fn)(const void*, size_t, int, int, int, int);

static const char* vo_call_str(void* fn)                 { return ((vo_str_fn)fn)(); }
static void vo_call_void(void* fn)                       { ((vo_void_fn)fn)(); }
static int vo_call_int_str(void* fn, const char* s)      { return ((vo_int_str_fn)fn)(s); }
static int vo_call_int_int(void* fn, int v)              { return ((vo_int_int_fn)fn)(v); }
static void vo_call_void_int(void* fn, int v)            { ((vo_void_int_fn)fn)(v); }
static void vo_call_void_size(void* fn, size_t v)        { ((vo_void_size_fn)fn)(v); }
static void vo_call_void_ptr(void* fn, uintptr_t p)      { ((vo_void_ptr_fn)fn)(p); }
static int vo_call_int_ptr(void* fn, uintptr_t p)        { return ((vo_int_ptr_fn)fn)(p); }
static uintptr_t vo_call_mem(void* fn, const void* data, size_t size, int w, int h, int bands) {
	// VIPS_FORMAT_UCHAR
	return (uintptr_t)((vo_mem_fn)fn)(data, size, w, h, bands, 0);
}
*/
import "C"

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"unsafe"
)

const wordSize = 8

var coreSymbols = []string{
	"vips_init",
	"vips_shutdown",
	"vips_version",
	"vips_error_buffer",
	"vips_error_clear",
	"vips_concurrency_set",
	"vips_cache_set_max",
	"vips_cache_set_max_mem",
	"vips_cache_set_max_files",
	"vips_image_get_width",
	"vips_image_get_height",
	"vips_image_get_bands",
	"g_object_unref",
	EntryNewFromFile,
	EntryNewFromMemory,
}

var operationSymbols = []string{
	EntryTiffSave,
	EntryDzSave,
	EntryJpegSave,
	EntryPngSave,
	EntryWebpSave,
	EntryRot,
	EntryThumbnailImage,
}

type nativeLibrary struct {
	path string
	syms map[string]unsafe.Pointer

	// guards lastErr, the message for calls that never reached libvips
	lock    sync.Mutex
	lastErr string
}

func openLibrary(path string) (Library, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	cPath := C.CString(path)
	defer freeCString(cPath)
	handle := C.vo_dlopen(cPath)
	if handle == nil {
		return nil, fmt.Errorf("dlopen(%q) failed: %s", path, dlerr())
	}
	l := &nativeLibrary{path: path, syms: make(map[string]unsafe.Pointer)}
	for _, list := range [][]string{coreSymbols, operationSymbols} {
		for _, name := range list {
			sym, err := lookup(handle, name)
			if err != nil {
				return nil, fmt.Errorf("dlsym(%q) in %s failed: %w", name, path, err)
			}
			l.syms[name] = sym
		}
	}
	cName := C.CString("vipsop")
	defer freeCString(cName)
	if code := int(C.vo_call_int_str(l.syms["vips_init"], cName)); code != 0 {
		return nil, fmt.Errorf("vips_init failed code=%d: %s", code, l.LastError())
	}
	if sym, err := lookup(handle, "g_log_set_handler"); err == nil {
		cDomain := C.CString(logDomain)
		C.vo_set_log_handler(sym, cDomain)
		freeCString(cDomain)
	} else {
		log("vips", LogLevelDebug, fmt.Sprintf("glib logging not routed: %v", err))
	}
	return l, nil
}

func lookup(handle unsafe.Pointer, name string) (unsafe.Pointer, error) {
	cName := C.CString(name)
	defer freeCString(cName)
	var cErr *C.char
	sym := C.vo_dlsym(handle, cName, &cErr)
	if cErr != nil {
		return nil, fmt.Errorf("%s", C.GoString(cErr))
	}
	return sym, nil
}

func dlerr() string {
	if e := C.vo_dlerror(); e != nil {
		return C.GoString(e)
	}
	return "unknown dlerror"
}

func freeCString(s *C.char) {
	C.free(unsafe.Pointer(s))
}

func (l *nativeLibrary) Call(entry string, fixed []Arg, tail CallTail) int {
	fn, ok := l.syms[entry]
	if !ok || !isOperation(entry) {
		l.setLastError(fmt.Sprintf("%s: not a bound operation", entry))
		return -1
	}
	args := make([]Arg, 0, len(fixed)+len(tail))
	args = append(append(args, fixed...), tail...)
	ret, err := invoke(fn, true, len(fixed), args, C.VO_RET_SINT)
	if err != nil {
		l.setLastError(fmt.Sprintf("%s: %v", entry, err))
		return -1
	}
	return int(int32(ret))
}

func (l *nativeLibrary) NewImageFromFile(filename string, tail CallTail) Handle {
	args := append([]Arg{String(filename)}, tail...)
	ret, err := invoke(l.syms[EntryNewFromFile], true, 1, args, C.VO_RET_POINTER)
	if err != nil {
		l.setLastError(fmt.Sprintf("%s: %v", EntryNewFromFile, err))
		return 0
	}
	return Handle(ret)
}

func (l *nativeLibrary) NewImageFromMemory(data []byte, width, height, bands int) Handle {
	if len(data) == 0 {
		l.setLastError(EntryNewFromMemory + ": empty buffer")
		return 0
	}
	buf := C.CBytes(data)
	defer C.free(buf)
	return Handle(C.vo_call_mem(l.syms[EntryNewFromMemory], buf, C.size_t(len(data)),
		C.int(width), C.int(height), C.int(bands)))
}

func (l *nativeLibrary) ImageWidth(h Handle) int {
	return int(C.vo_call_int_ptr(l.syms["vips_image_get_width"], C.uintptr_t(h)))
}

func (l *nativeLibrary) ImageHeight(h Handle) int {
	return int(C.vo_call_int_ptr(l.syms["vips_image_get_height"], C.uintptr_t(h)))
}

func (l *nativeLibrary) ImageBands(h Handle) int {
	return int(C.vo_call_int_ptr(l.syms["vips_image_get_bands"], C.uintptr_t(h)))
}

func (l *nativeLibrary) Unref(h Handle) {
	if h != 0 {
		C.vo_call_void_ptr(l.syms["g_object_unref"], C.uintptr_t(h))
	}
}

func (l *nativeLibrary) LastError() string {
	l.lock.Lock()
	msg := l.lastErr
	l.lastErr = ""
	l.lock.Unlock()
	if s := C.vo_call_str(l.syms["vips_error_buffer"]); s != nil {
		if buf := strings.TrimSpace(C.GoString(s)); buf != "" {
			msg = strings.TrimSpace(msg + "\n" + buf)
		}
	}
	C.vo_call_void(l.syms["vips_error_clear"])
	return msg
}

func (l *nativeLibrary) setLastError(msg string) {
	l.lock.Lock()
	l.lastErr = msg
	l.lock.Unlock()
}

func (l *nativeLibrary) SetConcurrency(n int) {
	C.vo_call_void_int(l.syms["vips_concurrency_set"], C.int(n))
}

func (l *nativeLibrary) SetCache(maxOps, maxMem, maxFiles int) {
	C.vo_call_void_int(l.syms["vips_cache_set_max"], C.int(maxOps))
	C.vo_call_void_size(l.syms["vips_cache_set_max_mem"], C.size_t(maxMem))
	C.vo_call_void_int(l.syms["vips_cache_set_max_files"], C.int(maxFiles))
}

func (l *nativeLibrary) Version() string {
	fn := l.syms["vips_version"]
	return fmt.Sprintf("%d.%d.%d",
		int(C.vo_call_int_int(fn, 0)),
		int(C.vo_call_int_int(fn, 1)),
		int(C.vo_call_int_int(fn, 2)))
}

func (l *nativeLibrary) Shutdown() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	C.vo_call_void(l.syms["vips_shutdown"])
}

func isOperation(entry string) bool {
	for _, name := range operationSymbols {
		if name == entry {
			return true
		}
	}
	return false
}

// argMemory holds the libffi type, value and slot vectors of one call on the C heap
type argMemory struct {
	n      int
	types  **C.ffi_type
	values *unsafe.Pointer
	slots  unsafe.Pointer
	outs   unsafe.Pointer
	frees  []unsafe.Pointer
}

func newArgMemory(n int) *argMemory {
	// n+1 words so that malloc(0) is never requested
	size := C.size_t((n + 1) * wordSize)
	return &argMemory{
		n:      n,
		types:  (**C.ffi_type)(C.malloc(size)),
		values: (*unsafe.Pointer)(C.malloc(size)),
		slots:  C.malloc(size),
		outs:   C.calloc(C.size_t(n+1), wordSize),
	}
}

func (m *argMemory) free() {
	for _, p := range m.frees {
		C.free(p)
	}
	C.free(unsafe.Pointer(m.types))
	C.free(unsafe.Pointer(m.values))
	C.free(m.slots)
	C.free(m.outs)
}

func (m *argMemory) set(i int, a Arg) {
	types := unsafe.Slice(m.types, m.n)
	values := unsafe.Slice(m.values, m.n)
	slot := unsafe.Add(m.slots, i*wordSize)
	switch a.Type {
	case ArgInt:
		*(*C.int)(slot) = C.int(a.Int)
		types[i] = C.vo_type_sint()
	case ArgDouble:
		*(*C.double)(slot) = C.double(a.Double)
		types[i] = C.vo_type_double()
	case ArgString:
		s := C.CString(a.Str)
		m.frees = append(m.frees, unsafe.Pointer(s))
		*(**C.char)(slot) = s
		types[i] = C.vo_type_pointer()
	case ArgBytes:
		b := C.CBytes(a.Bytes)
		m.frees = append(m.frees, b)
		*(*unsafe.Pointer)(slot) = b
		types[i] = C.vo_type_pointer()
	case ArgPointer:
		*(*C.uintptr_t)(slot) = C.uintptr_t(a.Ptr)
		types[i] = C.vo_type_pointer()
	case ArgOutImage:
		*(*unsafe.Pointer)(slot) = unsafe.Add(m.outs, i*wordSize)
		types[i] = C.vo_type_pointer()
	default:
		*(*C.uintptr_t)(slot) = 0
		types[i] = C.vo_type_pointer()
	}
	values[i] = slot
}

func (m *argMemory) collect(args []Arg) {
	for i, a := range args {
		if a.Type == ArgOutImage && a.Out != nil {
			*a.Out = Handle(*(*C.uintptr_t)(unsafe.Add(m.outs, i*wordSize)))
		}
	}
}

func invoke(fn unsafe.Pointer, variadic bool, nfixed int, args []Arg, rkind C.int) (uint64, error) {
	mem := newArgMemory(len(args))
	defer mem.free()
	for i, a := range args {
		mem.set(i, a)
	}
	var cVariadic C.int
	if variadic {
		cVariadic = 1
	}
	var result C.uint64_t
	if status := C.vo_call(fn, cVariadic, C.uint(nfixed), C.uint(len(args)),
		mem.types, mem.values, rkind, &result); status != 0 {
		return 0, fmt.Errorf("ffi_prep_cif status %d", int(status))
	}
	mem.collect(args)
	return uint64(result), nil
}
