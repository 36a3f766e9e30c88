package agent

import (
	"path/filepath"
	"regexp"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/process"
	log "github.com/sirupsen/logrus"
)

// Name of the ISC DHCP server executable.
const dhcpdProcName = "dhcpd"

// Lease file location used by the DHCP server when it is started without
// the -lf switch.
const DefaultLeaseFilePath = "/var/lib/dhcp/dhcpd.leases"

// Matches the lease file switch in the DHCP server command line.
var leaseFileSwitchPattern = regexp.MustCompile(`(?:^|\s)-lf\s+(\S+)`)

var (
	_ dhcpdLister  = (*systemDHCPDLister)(nil)
	_ dhcpdProcess = (*systemDHCPDProcess)(nil)
)

// Running DHCP server instance. The interface is mocked in the unit tests.
type dhcpdProcess interface {
	pid() int32
	parentPID() (int32, error)
	commandLine() (string, error)
	workingDir() (string, error)
}

// DHCP server instance backed by the operating system process table.
type systemDHCPDProcess struct {
	proc *process.Process
}

func (p *systemDHCPDProcess) pid() int32 {
	return p.proc.Pid
}

func (p *systemDHCPDProcess) parentPID() (int32, error) {
	ppid, err := p.proc.Ppid()
	if err != nil {
		return 0, errors.Wrapf(err, "cannot read the parent of the DHCP server process %d", p.pid())
	}
	return ppid, nil
}

func (p *systemDHCPDProcess) commandLine() (string, error) {
	cmdline, err := p.proc.Cmdline()
	if err != nil {
		return "", errors.Wrapf(err, "cannot read the command line of the DHCP server process %d", p.pid())
	}
	return cmdline, nil
}

func (p *systemDHCPDProcess) workingDir() (string, error) {
	cwd, err := p.proc.Cwd()
	if err != nil {
		return "", errors.Wrapf(err, "cannot read the working directory of the DHCP server process %d", p.pid())
	}
	return cwd, nil
}

// Enumerates the running DHCP server instances.
type dhcpdLister interface {
	listDHCPD() ([]dhcpdProcess, error)
}

// Lister scanning the operating system process table with gopsutil.
type systemDHCPDLister struct{}

func (systemDHCPDLister) listDHCPD() ([]dhcpdProcess, error) {
	all, err := process.Processes()
	if err != nil {
		return nil, errors.Wrap(err, "cannot enumerate the system processes")
	}
	var servers []dhcpdProcess
	for _, proc := range all {
		if name, err := proc.Name(); err == nil && name == dhcpdProcName {
			servers = append(servers, &systemDHCPDProcess{proc: proc})
		}
	}
	return servers, nil
}

// Finds the lease files written by the running DHCP servers. The server
// forks when it daemonizes, so a process whose parent is another listed
// server is considered a duplicate.
type ProcessManager struct {
	lister dhcpdLister
}

// Returns the ProcessManager scanning the system process table.
func NewProcessManager() *ProcessManager {
	return &ProcessManager{lister: systemDHCPDLister{}}
}

// Lists the top-level DHCP server processes. Processes whose parent cannot
// be determined have most likely exited and are omitted.
func (pm *ProcessManager) listProcesses() ([]dhcpdProcess, error) {
	servers, err := pm.lister.listDHCPD()
	if err != nil {
		return nil, err
	}
	pids := make(map[int32]bool, len(servers))
	for _, server := range servers {
		pids[server.pid()] = true
	}
	var topLevel []dhcpdProcess
	for _, server := range servers {
		ppid, err := server.parentPID()
		if err != nil {
			log.WithError(err).Debug("Skipping the DHCP server process")
			continue
		}
		if ppid != server.pid() && pids[ppid] {
			continue
		}
		topLevel = append(topLevel, server)
	}
	return topLevel, nil
}

// Returns the lease file written by the DHCP server process. The relative
// path is resolved against the process working directory. The default
// location is returned when the process does not specify the lease file.
func leaseFileOfProcess(p dhcpdProcess) (string, error) {
	cmdline, err := p.commandLine()
	if err != nil {
		return "", err
	}
	m := leaseFileSwitchPattern.FindStringSubmatch(cmdline)
	if m == nil {
		return DefaultLeaseFilePath, nil
	}
	path := m[1]
	if filepath.IsAbs(path) {
		return path, nil
	}
	cwd, err := p.workingDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, path), nil
}

// Finds the lease file of the first running DHCP server. The second
// returned value is false if no running server has been found.
func (pm *ProcessManager) DetectLeaseFile() (string, bool) {
	processes, err := pm.listProcesses()
	if err != nil {
		log.WithError(err).Warn("Failed to list the DHCP server processes")
		return "", false
	}
	for _, p := range processes {
		path, err := leaseFileOfProcess(p)
		if err != nil {
			log.WithError(err).WithField("pid", p.pid()).Warn("Failed to determine the lease file of the DHCP server")
			continue
		}
		log.WithFields(log.Fields{
			"pid":  p.pid(),
			"file": path,
		}).Info("Detected the lease file of the running DHCP server")
		return path, true
	}
	return "", false
}

// Returns the lease file location. The configured location takes
// precedence over the one detected from the running DHCP server. The
// default location is used when neither is available.
func (pm *ProcessManager) ResolveLeaseFile(configured string) string {
	if configured != "" {
		return configured
	}
	if path, ok := pm.DetectLeaseFile(); ok {
		return path
	}
	log.WithField("file", DefaultLeaseFilePath).Info("Using the default lease file location")
	return DefaultLeaseFilePath
}
