package evt

func (e ConnectionComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e ConnectionComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e ConnectionComplete) BDADDR() [6]byte {
	v, _ := e.BDADDRWErr()
	return v
}

func (e ConnectionComplete) LinkType() uint8 {
	v, _ := e.LinkTypeWErr()
	return v
}

func (e ConnectionComplete) EncryptionEnabled() uint8 {
	v, _ := e.EncryptionEnabledWErr()
	return v
}

func (e ConnectionRequest) BDADDR() [6]byte {
	v, _ := e.BDADDRWErr()
	return v
}

func (e ConnectionRequest) LinkType() uint8 {
	v, _ := e.LinkTypeWErr()
	return v
}

func (e DisconnectionComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e DisconnectionComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e DisconnectionComplete) Reason() uint8 {
	v, _ := e.ReasonWErr()
	return v
}

func (e EncryptionChange) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e EncryptionChange) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e EncryptionChange) EncryptionEnabled() uint8 {
	v, _ := e.EncryptionEnabledWErr()
	return v
}

func (e ReadRemoteSupportedFeaturesComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e ReadRemoteSupportedFeaturesComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e ReadRemoteSupportedFeaturesComplete) LMPFeatures() [8]byte {
	v, _ := e.LMPFeaturesWErr()
	return v
}

func (e ReadRemoteVersionInformationComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e ReadRemoteVersionInformationComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e ReadRemoteVersionInformationComplete) Version() uint8 {
	v, _ := e.VersionWErr()
	return v
}

func (e ReadRemoteVersionInformationComplete) ManufacturerName() uint16 {
	v, _ := e.ManufacturerNameWErr()
	return v
}

func (e ReadRemoteVersionInformationComplete) Subversion() uint16 {
	v, _ := e.SubversionWErr()
	return v
}

func (e CommandComplete) NumHCICommandPackets() uint8 {
	v, _ := e.NumHCICommandPacketsWErr()
	return v
}

func (e CommandComplete) CommandOpcode() uint16 {
	v, _ := e.CommandOpcodeWErr()
	return v
}

func (e CommandComplete) ReturnParameters() []byte {
	v, _ := e.ReturnParametersWErr()
	return v
}

func (e CommandStatus) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e CommandStatus) NumHCICommandPackets() uint8 {
	v, _ := e.NumHCICommandPacketsWErr()
	return v
}

func (e CommandStatus) CommandOpcode() uint16 {
	v, _ := e.CommandOpcodeWErr()
	return v
}

func (e HardwareError) HardwareCode() uint8 {
	v, _ := e.HardwareCodeWErr()
	return v
}

func (e RoleChange) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e RoleChange) BDADDR() [6]byte {
	v, _ := e.BDADDRWErr()
	return v
}

func (e RoleChange) NewRole() uint8 {
	v, _ := e.NewRoleWErr()
	return v
}

func (e ModeChange) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e ModeChange) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e ModeChange) CurrentMode() uint8 {
	v, _ := e.CurrentModeWErr()
	return v
}

func (e ModeChange) Interval() uint16 {
	v, _ := e.IntervalWErr()
	return v
}

func (e DataBufferOverflow) LinkType() uint8 {
	v, _ := e.LinkTypeWErr()
	return v
}

func (e ReadRemoteExtendedFeaturesComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e ReadRemoteExtendedFeaturesComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e ReadRemoteExtendedFeaturesComplete) PageNumber() uint8 {
	v, _ := e.PageNumberWErr()
	return v
}

func (e ReadRemoteExtendedFeaturesComplete) MaximumPageNumber() uint8 {
	v, _ := e.MaximumPageNumberWErr()
	return v
}

func (e ReadRemoteExtendedFeaturesComplete) ExtendedLMPFeatures() [8]byte {
	v, _ := e.ExtendedLMPFeaturesWErr()
	return v
}

func (e LEConnectionComplete) SubeventCode() uint8 {
	v, _ := e.SubeventCodeWErr()
	return v
}

func (e LEConnectionComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e LEConnectionComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e LEConnectionComplete) Role() uint8 {
	v, _ := e.RoleWErr()
	return v
}

func (e LEConnectionComplete) PeerAddressType() uint8 {
	v, _ := e.PeerAddressTypeWErr()
	return v
}

func (e LEConnectionComplete) PeerAddress() [6]byte {
	v, _ := e.PeerAddressWErr()
	return v
}

func (e LEConnectionComplete) ConnInterval() uint16 {
	v, _ := e.ConnIntervalWErr()
	return v
}

func (e LEConnectionComplete) ConnLatency() uint16 {
	v, _ := e.ConnLatencyWErr()
	return v
}

func (e LEConnectionComplete) SupervisionTimeout() uint16 {
	v, _ := e.SupervisionTimeoutWErr()
	return v
}

func (e LEConnectionComplete) MasterClockAccuracy() uint8 {
	v, _ := e.MasterClockAccuracyWErr()
	return v
}

func (e LEConnectionUpdateComplete) SubeventCode() uint8 {
	v, _ := e.SubeventCodeWErr()
	return v
}

func (e LEConnectionUpdateComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e LEConnectionUpdateComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e LEConnectionUpdateComplete) ConnInterval() uint16 {
	v, _ := e.ConnIntervalWErr()
	return v
}

func (e LEConnectionUpdateComplete) ConnLatency() uint16 {
	v, _ := e.ConnLatencyWErr()
	return v
}

func (e LEConnectionUpdateComplete) SupervisionTimeout() uint16 {
	v, _ := e.SupervisionTimeoutWErr()
	return v
}

func (e LERemoteConnectionParameterRequest) SubeventCode() uint8 {
	v, _ := e.SubeventCodeWErr()
	return v
}

func (e LERemoteConnectionParameterRequest) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e LERemoteConnectionParameterRequest) IntervalMin() uint16 {
	v, _ := e.IntervalMinWErr()
	return v
}

func (e LERemoteConnectionParameterRequest) IntervalMax() uint16 {
	v, _ := e.IntervalMaxWErr()
	return v
}

func (e LERemoteConnectionParameterRequest) Latency() uint16 {
	v, _ := e.LatencyWErr()
	return v
}

func (e LERemoteConnectionParameterRequest) Timeout() uint16 {
	v, _ := e.TimeoutWErr()
	return v
}

func (e LEEnhancedConnectionComplete) SubeventCode() uint8 {
	v, _ := e.SubeventCodeWErr()
	return v
}

func (e LEEnhancedConnectionComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e LEEnhancedConnectionComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e LEEnhancedConnectionComplete) Role() uint8 {
	v, _ := e.RoleWErr()
	return v
}

func (e LEEnhancedConnectionComplete) PeerAddressType() uint8 {
	v, _ := e.PeerAddressTypeWErr()
	return v
}

func (e LEEnhancedConnectionComplete) PeerAddress() [6]byte {
	v, _ := e.PeerAddressWErr()
	return v
}

func (e LEEnhancedConnectionComplete) LocalResolvablePrivateAddress() [6]byte {
	v, _ := e.LocalResolvablePrivateAddressWErr()
	return v
}

func (e LEEnhancedConnectionComplete) PeerResolvablePrivateAddress() [6]byte {
	v, _ := e.PeerResolvablePrivateAddressWErr()
	return v
}

func (e LEEnhancedConnectionComplete) ConnInterval() uint16 {
	v, _ := e.ConnIntervalWErr()
	return v
}

func (e LEEnhancedConnectionComplete) ConnLatency() uint16 {
	v, _ := e.ConnLatencyWErr()
	return v
}

func (e LEEnhancedConnectionComplete) SupervisionTimeout() uint16 {
	v, _ := e.SupervisionTimeoutWErr()
	return v
}

func (e LEEnhancedConnectionComplete) MasterClockAccuracy() uint8 {
	v, _ := e.MasterClockAccuracyWErr()
	return v
}

func (e NumberOfCompletedPackets) NumberOfHandles() uint8 {
	v, _ := e.NumberOfHandlesWErr()
	return v
}

func (e NumberOfCompletedPackets) ConnectionHandle(i int) uint16 {
	v, _ := e.ConnectionHandleWErr(i)
	return v
}

func (e NumberOfCompletedPackets) HCNumOfCompletedPackets(i int) uint16 {
	v, _ := e.HCNumOfCompletedPacketsWErr(i)
	return v
}
