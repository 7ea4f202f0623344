package buffer

var NewNormalizingChunkReader = newNormalizingChunkReader
