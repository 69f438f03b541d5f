package ftp

import (
	"crypto/subtle"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"

	ftpserver "github.com/fclairamb/ftpserverlib"
	"github.com/spf13/afero"

	"github.com/hostsuite/resellerd/internal/config"

	log "github.com/sirupsen/logrus"
)

// Server runs the FTP transport service over a fixed authorization table.
// It implements ftpserver.MainDriver.
type Server struct {
	cfg   config.FTPConfig
	table AuthTable

	srv *ftpserver.FtpServer

	mu      sync.Mutex
	byID    map[uint32]string // connection id -> remote host
	perHost map[string]int
	total   int
}

// NewServer constructs a transport server bound to the given table.
func NewServer(cfg config.FTPConfig, table AuthTable) *Server {
	return &Server{
		cfg:     cfg,
		table:   table,
		byID:    make(map[uint32]string),
		perHost: make(map[string]int),
	}
}

// Start runs the listener until Stop is called or the listener fails.
func (s *Server) Start() error {
	s.srv = ftpserver.NewFtpServer(s)
	log.Infof("ftp: server starting on %s:%d (users=%d, max_cons=%d, max_per_ip=%d)",
		s.cfg.Host, s.cfg.Port, len(s.table), s.cfg.MaxConnections, s.cfg.MaxPerIP)
	if errListen := s.srv.ListenAndServe(); errListen != nil {
		return fmt.Errorf("ftp: listen: %w", errListen)
	}
	return nil
}

// Stop shuts the listener down.
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Stop()
}

// GetSettings returns the listener settings built from config.
func (s *Server) GetSettings() (*ftpserver.Settings, error) {
	return &ftpserver.Settings{
		ListenAddr: fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		PassiveTransferPortRange: &ftpserver.PortRange{
			Start: s.cfg.PassivePortStart,
			End:   s.cfg.PassivePortEnd,
		},
	}, nil
}

// ClientConnected enforces connection limits and returns the banner.
func (s *Server) ClientConnected(cc ftpserver.ClientContext) (string, error) {
	host := remoteHost(cc.RemoteAddr())

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.total >= s.cfg.MaxConnections {
		return "", fmt.Errorf("too many connections (max %d)", s.cfg.MaxConnections)
	}
	if s.perHost[host] >= s.cfg.MaxPerIP {
		return "", fmt.Errorf("too many connections from %s (max %d)", host, s.cfg.MaxPerIP)
	}

	s.total++
	s.perHost[host]++
	s.byID[cc.ID()] = host

	log.Infof("ftp: new connection from %s", cc.RemoteAddr())
	return s.cfg.Banner, nil
}

// ClientDisconnected releases the connection slot.
func (s *Server) ClientDisconnected(cc ftpserver.ClientContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	host, ok := s.byID[cc.ID()]
	if !ok {
		return
	}
	delete(s.byID, cc.ID())
	s.total--
	if s.perHost[host] <= 1 {
		delete(s.perHost, host)
	} else {
		s.perHost[host]--
	}
	log.Infof("ftp: disconnected %s", host)
}

// AuthUser checks the login against the authorization table and returns a
// filesystem jailed to the account's home directory.
func (s *Server) AuthUser(cc ftpserver.ClientContext, user, pass string) (ftpserver.ClientDriver, error) {
	cred, ok := s.table[user]
	if !ok || subtle.ConstantTimeCompare([]byte(cred.Password), []byte(pass)) != 1 {
		return nil, errors.New("invalid username or password")
	}
	log.Infof("ftp: user logged in: %s", user)
	return afero.NewBasePathFs(afero.NewOsFs(), cred.HomeDir), nil
}

// GetTLSConfig reports that TLS is not configured for this transport.
func (s *Server) GetTLSConfig() (*tls.Config, error) {
	return nil, errors.New("ftp: TLS is not configured")
}

// remoteHost extracts the host part of a remote address.
func remoteHost(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, errSplit := net.SplitHostPort(addr.String())
	if errSplit != nil {
		return addr.String()
	}
	return host
}
