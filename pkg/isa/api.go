package isa

// APIMethod describes one entry in the host-API table: the method name
// recognised after `AKM.` in source, the capability bit it implies, and the
// number of arguments the call form takes. Argc is the declared count only:
// call sites are not checked against it, and the IR builder's CALL_API{argc}
// carries the call site's actual argument count.
type APIMethod struct {
	Name       string
	Capability Capability
	Argc       int
	// Index is this method's position within APITable, used as the 1-byte
	// API index encoded by pkg/codegen for CALL_API. Methods not present in
	// APITable encode as index 0xFF.
	Index int
}

// UnknownAPIIndex is the 1-byte CALL_API operand used for a method name not
// present in APITable.
const UnknownAPIIndex = 0xFF

// RegisterCommandMethod is the synthesized API call the IR builder injects
// into `init` for every extracted command registration. It is part of
// APITable like any other method so it gets a stable index and capability.
const RegisterCommandMethod = "registerCommand"

// apiList is the ordered host-API table, organised by domain. Order
// determines each method's Index (position within the table), which
// pkg/codegen encodes as CALL_API's 1-byte operand.
var apiList = []struct {
	Name string
	Cap  Capability
	Argc int
}{
	// command registration
	{RegisterCommandMethod, CapCommand, 5},

	// logging
	{"log", CapLog, 1},
	{"info", CapLog, 1},
	{"warn", CapLog, 1},
	{"error", CapLog, 1},
	{"debug", CapLog, 1},

	// memory
	{"alloc", CapMemory, 1},
	{"free", CapMemory, 1},
	{"memcpy", CapMemory, 3},
	{"memset", CapMemory, 3},

	// environment
	{"getenv", CapEnv, 1},
	{"setenv", CapEnv, 2},
	{"unsetenv", CapEnv, 1},

	// timers
	{"sleep", CapTimer, 1},
	{"setTimeout", CapTimer, 2},
	{"clearTimeout", CapTimer, 1},
	{"uptime", CapTimer, 0},

	// PCI
	{"pciRead", CapPCI, 2},
	{"pciWrite", CapPCI, 3},
	{"pciScan", CapPCI, 0},

	// I/O ports
	{"inb", CapIOPort, 1},
	{"outb", CapIOPort, 2},
	{"inw", CapIOPort, 1},
	{"outw", CapIOPort, 2},
	{"inl", CapIOPort, 1},
	{"outl", CapIOPort, 2},

	// IRQ
	{"irqRegister", CapIRQ, 2},
	{"irqUnregister", CapIRQ, 1},
	{"irqEnable", CapIRQ, 1},
	{"irqDisable", CapIRQ, 1},

	// system info
	{"sysUptime", CapSysInfo, 0},
	{"sysVersion", CapSysInfo, 0},
	{"sysHostname", CapSysInfo, 0},

	// processes
	{"spawn", CapProcess, 1},
	{"kill", CapProcess, 2},
	{"wait", CapProcess, 1},
	{"getpid", CapProcess, 0},
	{"exitProcess", CapProcess, 1},

	// IPC
	{"ipcSend", CapIPC, 2},
	{"ipcRecv", CapIPC, 1},
	{"ipcCreateQueue", CapIPC, 1},
	{"ipcDeleteQueue", CapIPC, 1},

	// crypto
	{"hash", CapCrypto, 1},
	{"encrypt", CapCrypto, 2},
	{"decrypt", CapCrypto, 2},

	// drivers
	{"driverLoad", CapDriver, 1},
	{"driverUnload", CapDriver, 1},
	{"driverList", CapDriver, 0},

	// filesystem
	{"fsOpen", CapFS, 2},
	{"fsClose", CapFS, 1},
	{"fsRead", CapFS, 3},
	{"fsWrite", CapFS, 3},
	{"fsSeek", CapFS, 3},
	{"fsStat", CapFS, 1},
	{"fsMkdir", CapFS, 1},
	{"fsUnlink", CapFS, 1},

	// network
	{"netSocket", CapNetwork, 2},
	{"netConnect", CapNetwork, 2},
	{"netBind", CapNetwork, 2},
	{"netListen", CapNetwork, 1},
	{"netAccept", CapNetwork, 1},
	{"netSend", CapNetwork, 2},
	{"netRecv", CapNetwork, 2},

	// users
	{"userAdd", CapUsers, 2},
	{"userDel", CapUsers, 1},
	{"userList", CapUsers, 0},
	{"getuid", CapUsers, 0},
	{"setuid", CapUsers, 1},

	// signal
	{"signalRegister", CapSignal, 2},
	{"signalRaise", CapSignal, 1},

	// power
	{"powerOff", CapPower, 0},
	{"reboot", CapPower, 0},

	// random
	{"random", CapRandom, 1},

	// graphics
	{"fbMap", CapGraphics, 0},
	{"fbFlush", CapGraphics, 0},

	// debug
	{"assert", CapDebug, 2},
}

// APITable is the fully indexed host-API table, built once at init time from
// apiList. Methods are keyed by name for the frontend/IR-builder lookup and
// carry their stable Index for pkg/codegen.
var APITable = buildAPITable()

func buildAPITable() map[string]APIMethod {
	table := make(map[string]APIMethod, len(apiList))

	for i, m := range apiList {
		table[m.Name] = APIMethod{
			Name:       m.Name,
			Capability: m.Cap,
			Argc:       m.Argc,
			Index:      i,
		}
	}

	return table
}

// LookupAPI resolves a method name to its table entry. ok is false for any
// method not in the closed table — a warning, not an error; the call is
// still emitted with API index 0xFF.
func LookupAPI(name string) (APIMethod, bool) {
	m, ok := APITable[name]
	return m, ok
}
